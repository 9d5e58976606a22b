// Package services provides shared infrastructure for pipeline steps and
// external collaborators: a sentinel error taxonomy for failure
// classification and context annotations for structured logging.
package services
