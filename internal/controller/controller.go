package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"foreman/internal/job"
	"foreman/internal/logs"
	"foreman/pkg/logging"
)

const subsystem = "Controller"

// Controller orchestrates ephemeral batch jobs in one namespace of one
// cluster. It is not safe for concurrent use; callers that need parallelism
// run one controller per goroutine.
type Controller struct {
	client    ClusterClient
	namespace string
	cache     *resourceCache
}

// New creates a controller scoped to namespace.
func New(client ClusterClient, namespace string) *Controller {
	return &Controller{
		client:    client,
		namespace: namespace,
		cache:     newResourceCache(client, namespace),
	}
}

// Namespace returns the namespace this controller is scoped to.
func (c *Controller) Namespace() string {
	return c.namespace
}

// Refresh rebuilds the job resource cache from the cluster. Hot-path callers
// of JobStatusFor refresh explicitly; the wait and enqueue operations refresh
// internally.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.cache.Refresh(ctx)
}

// JobStatusFor derives the status of the named job from the cached
// resources.
func (c *Controller) JobStatusFor(name string) JobStatus {
	return statusFromResource(c.cache.Lookup(name))
}

// CachedJobs returns the cached job resources sorted by name, for callers
// that present a namespace overview.
func (c *Controller) CachedJobs() []*batchv1.Job {
	names := c.cache.Names()
	sort.Strings(names)
	jobs := make([]*batchv1.Job, 0, len(names))
	for _, name := range names {
		jobs = append(jobs, c.cache.Lookup(name))
	}
	return jobs
}

// EnqueueJob submits the definition, applying the concurrency policy against
// the current status of the colliding name. It returns whether a new job was
// created.
func (c *Controller) EnqueueJob(ctx context.Context, d job.Definition, policy ConcurrencyPolicy) (bool, error) {
	name, err := job.Name(d)
	if err != nil {
		return false, err
	}

	if err := c.cache.Refresh(ctx); err != nil {
		return false, err
	}

	status := c.JobStatusFor(name)
	switch status {
	case StatusNotExists:
		// fall through to create
	case StatusInProgress:
		if !policy.Has(ReplaceInProgress) {
			logging.Debug(subsystem, "job %s is in progress, leaving it untouched", name)
			return false, nil
		}
		if err := c.DeleteJob(ctx, name); err != nil {
			return false, err
		}
	case StatusError:
		if !policy.Has(ReplaceFailed) {
			logging.Debug(subsystem, "job %s has failed, leaving it untouched", name)
			return false, nil
		}
		if err := c.DeleteJob(ctx, name); err != nil {
			return false, err
		}
	case StatusSuccess:
		if !policy.Has(ReplaceFinished) {
			logging.Debug(subsystem, "job %s has finished, leaving it untouched", name)
			return false, nil
		}
		if err := c.DeleteJob(ctx, name); err != nil {
			return false, err
		}
	}

	if err := c.CreateJob(ctx, d); err != nil {
		return false, err
	}
	return true, nil
}

// CreateJob validates the rendered spec and submits the job, together with
// its companion secret and scripts config map when the definition carries
// them. A spec without the finished-job TTL is rejected before any cluster
// call; without it finished batch jobs would accumulate forever.
func (c *Controller) CreateJob(ctx context.Context, d job.Definition) error {
	name, err := job.Name(d)
	if err != nil {
		return err
	}

	spec := d.JobSpec()
	if spec == nil {
		return &ValidationError{JobName: name, Reason: "definition renders no job spec"}
	}
	if spec.TTLSecondsAfterFinished == nil {
		return &ValidationError{JobName: name, Reason: "spec does not set ttlSecondsAfterFinished"}
	}

	scripts, err := job.BuildScripts(d)
	if err != nil {
		return err
	}
	if scripts != nil {
		if err := c.client.ApplyConfigMap(ctx, c.namespace, scripts); err != nil {
			return err
		}
	}

	secret, err := job.BuildSecret(d)
	if err != nil {
		return err
	}
	if secret != nil {
		if err := c.client.ApplySecret(ctx, c.namespace, secret); err != nil {
			return err
		}
	}

	built, err := job.Build(d)
	if err != nil {
		return err
	}
	created, err := c.client.ApplyJob(ctx, c.namespace, built)
	if err != nil {
		return err
	}

	// Companions are applied before the job so its pod never starts without
	// them, then adopted by it. Ownership makes the cluster garbage-collect
	// them together with the job, whether it is deleted explicitly or
	// collected after the finished-job TTL.
	owner := jobOwnerReference(created)
	if scripts != nil {
		scripts.OwnerReferences = []metav1.OwnerReference{owner}
		if err := c.client.ApplyConfigMap(ctx, c.namespace, scripts); err != nil {
			return err
		}
	}
	if secret != nil {
		secret.OwnerReferences = []metav1.OwnerReference{owner}
		if err := c.client.ApplySecret(ctx, c.namespace, secret); err != nil {
			return err
		}
	}

	logging.Info(subsystem, "created job %s in namespace %s", name, c.namespace)
	return nil
}

func jobOwnerReference(j *batchv1.Job) metav1.OwnerReference {
	return metav1.OwnerReference{
		APIVersion: "batch/v1",
		Kind:       "Job",
		Name:       j.Name,
		UID:        j.UID,
	}
}

// DeleteJob deletes the named job resource. Deleting a job the cache does
// not know is a no-op.
func (c *Controller) DeleteJob(ctx context.Context, name string) error {
	if c.cache.Lookup(name) == nil {
		logging.Debug(subsystem, "job %s does not exist, nothing to delete", name)
		return nil
	}
	if err := c.client.DeleteJob(ctx, c.namespace, name); err != nil {
		return err
	}
	logging.Info(subsystem, "deleted job %s in namespace %s", name, c.namespace)
	return nil
}

// WaitForJobCompletion polls the named job until it reaches a terminal
// status. It returns true on SUCCESS and false on ERROR. When neither is
// reached within timeout, measured from the start of this call, it fails
// with a TimeoutError. The loop refreshes the cache before every evaluation,
// so a wait issued right after an enqueue observes at least the state that
// enqueue produced.
func (c *Controller) WaitForJobCompletion(ctx context.Context, name string, checkInterval, timeout time.Duration) (bool, error) {
	start := time.Now()
	for {
		if err := c.cache.Refresh(ctx); err != nil {
			return false, err
		}

		switch status := c.JobStatusFor(name); status {
		case StatusSuccess:
			return true, nil
		case StatusError:
			return false, nil
		default:
			logging.Debug(subsystem, "job %s is %s, waiting", name, status)
		}

		if time.Since(start) > timeout {
			return false, &TimeoutError{JobName: name, Timeout: timeout}
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(checkInterval):
		}
	}
}

// WaitForJobListCompletion applies the same polling discipline to a set of
// jobs, sharing a single deadline taken at call entry. Jobs leave the active
// polling set as soon as they reach a terminal status. On timeout the
// best-known status of every job is returned without an error, because
// partial progress across a set is a normal outcome the caller must
// interpret.
func (c *Controller) WaitForJobListCompletion(ctx context.Context, names []string, checkInterval, timeout time.Duration) (map[string]JobStatus, error) {
	start := time.Now()
	statuses := make(map[string]JobStatus, len(names))
	pending := append([]string(nil), names...)

	for {
		if err := c.cache.Refresh(ctx); err != nil {
			return nil, err
		}

		remaining := pending[:0]
		for _, name := range pending {
			status := c.JobStatusFor(name)
			statuses[name] = status
			if !status.Terminal() {
				remaining = append(remaining, name)
			}
		}
		pending = remaining

		if len(pending) == 0 {
			return statuses, nil
		}

		// A sleep that would overshoot the shared deadline is pointless:
		// report the best-known statuses instead.
		if time.Since(start)+checkInterval > timeout {
			logging.Warn(subsystem, "timed out waiting for %d of %d jobs", len(pending), len(names))
			return statuses, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(checkInterval):
		}
	}
}

// EnqueueAndWait composes EnqueueJob with a single-job wait, collapsing any
// non-success terminal state to ERROR.
func (c *Controller) EnqueueAndWait(ctx context.Context, d job.Definition, checkInterval, timeout time.Duration, policy ConcurrencyPolicy) (JobStatus, error) {
	name, err := job.Name(d)
	if err != nil {
		return StatusError, err
	}

	if _, err := c.EnqueueJob(ctx, d, policy); err != nil {
		return StatusError, err
	}

	ok, err := c.WaitForJobCompletion(ctx, name, checkInterval, timeout)
	if err != nil {
		return StatusError, err
	}
	if !ok {
		return StatusError, nil
	}
	return StatusSuccess, nil
}

// JobLogs streams the logs of the definition's job into output.
func (c *Controller) JobLogs(ctx context.Context, d job.Definition, output io.Writer) error {
	name, err := job.Name(d)
	if err != nil {
		return err
	}
	return c.client.JobLogs(ctx, c.namespace, name, false, output)
}

// StreamJobLogs writes the logs of the named job to output. With follow set
// the stream stays open until the pod finishes or ctx is cancelled.
func (c *Controller) StreamJobLogs(ctx context.Context, name string, follow bool, output io.Writer) error {
	return c.client.JobLogs(ctx, c.namespace, name, follow, output)
}

// StoreJobLogs persists the named job's logs to a file under dir and returns
// a log handle rooted at that file. Cleaning the file up is the caller's
// responsibility.
func (c *Controller) StoreJobLogs(ctx context.Context, name, dir string) (*logs.Handle, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, name+".log")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", path, err)
	}

	fetchErr := c.client.JobLogs(ctx, c.namespace, name, false, f)
	closeErr := f.Close()
	if fetchErr != nil {
		// A failed fetch must not leave an empty or partial file behind.
		os.Remove(path)
		return nil, fetchErr
	}
	if closeErr != nil {
		return nil, closeErr
	}

	logging.Debug(subsystem, "stored logs for job %s at %s", name, path)
	return logs.NewHandle(path), nil
}
