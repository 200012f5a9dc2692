package controller

import (
	"context"
	"io"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
)

// JobStatus is the derived state of a job resource. It is computed from the
// cached resource on every evaluation, never stored.
type JobStatus string

const (
	// StatusSuccess means at least one pod of the job succeeded.
	StatusSuccess JobStatus = "SUCCESS"

	// StatusError means the job exhausted its retry budget.
	StatusError JobStatus = "ERROR"

	// StatusInProgress means the job exists and is neither succeeded nor
	// failed beyond its retry budget.
	StatusInProgress JobStatus = "IN_PROGRESS"

	// StatusNotExists means no job resource with that name is cached.
	StatusNotExists JobStatus = "NOT_EXISTS"
)

// Terminal reports whether the status is a final outcome.
func (s JobStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

// ConcurrencyPolicy is a combinable set of flags governing what happens when
// a job with the computed name already exists.
type ConcurrencyPolicy uint8

const (
	// NoReplace leaves any existing job untouched.
	NoReplace ConcurrencyPolicy = 0

	// ReplaceFailed replaces an existing job in ERROR status.
	ReplaceFailed ConcurrencyPolicy = 1 << iota
	// ReplaceInProgress replaces an existing job in IN_PROGRESS status.
	ReplaceInProgress
	// ReplaceFinished replaces an existing job in SUCCESS status.
	ReplaceFinished
)

// Has reports whether flag is set in the policy.
func (p ConcurrencyPolicy) Has(flag ConcurrencyPolicy) bool {
	return p&flag != 0
}

// defaultBackoffLimit mirrors the batch controller's default when a spec
// leaves backoffLimit unset.
const defaultBackoffLimit int32 = 6

// statusFromResource derives the status of one cached job resource.
func statusFromResource(j *batchv1.Job) JobStatus {
	if j == nil {
		return StatusNotExists
	}
	if j.Status.Succeeded > 0 {
		return StatusSuccess
	}
	limit := defaultBackoffLimit
	if j.Spec.BackoffLimit != nil {
		limit = *j.Spec.BackoffLimit
	}
	if j.Status.Failed >= limit {
		return StatusError
	}
	return StatusInProgress
}

// ClusterClient is the narrow cluster interface the controller consumes.
// The production implementation lives in internal/kube; tests substitute a
// fake. Errors from these calls propagate unmodified, the controller does no
// retry or backoff around them.
type ClusterClient interface {
	ListJobs(ctx context.Context, namespace string) ([]batchv1.Job, error)
	ApplyJob(ctx context.Context, namespace string, job *batchv1.Job) (*batchv1.Job, error)
	ApplySecret(ctx context.Context, namespace string, secret *corev1.Secret) error
	ApplyConfigMap(ctx context.Context, namespace string, configMap *corev1.ConfigMap) error
	DeleteJob(ctx context.Context, namespace, name string) error
	JobLogs(ctx context.Context, namespace, name string, follow bool, output io.Writer) error
}
