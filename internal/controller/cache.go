package controller

import (
	"context"

	batchv1 "k8s.io/api/batch/v1"
)

// resourceCache holds the most recent listing of job resources for the
// controller's namespace. Refresh replaces the whole snapshot with a full
// re-list; at the scale of one namespace's batch jobs that is acceptable,
// though it is a known cost center at higher job volumes.
//
// The cache is owned exclusively by one controller instance and is not safe
// for concurrent mutation.
type resourceCache struct {
	client    ClusterClient
	namespace string
	jobs      map[string]*batchv1.Job
}

func newResourceCache(client ClusterClient, namespace string) *resourceCache {
	return &resourceCache{
		client:    client,
		namespace: namespace,
		jobs:      map[string]*batchv1.Job{},
	}
}

// Refresh rebuilds the snapshot from the cluster.
func (c *resourceCache) Refresh(ctx context.Context) error {
	items, err := c.client.ListJobs(ctx, c.namespace)
	if err != nil {
		return err
	}

	jobs := make(map[string]*batchv1.Job, len(items))
	for i := range items {
		jobs[items[i].Name] = &items[i]
	}
	c.jobs = jobs
	return nil
}

// Lookup returns the cached resource, or nil when no job with that name is
// known.
func (c *resourceCache) Lookup(name string) *batchv1.Job {
	return c.jobs[name]
}

// Names returns the names of all cached jobs.
func (c *resourceCache) Names() []string {
	names := make([]string, 0, len(c.jobs))
	for name := range c.jobs {
		names = append(names, name)
	}
	return names
}
