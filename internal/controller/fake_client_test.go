package controller

import (
	"context"
	"io"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"

	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
)

// fakeClusterClient is a scripted in-memory ClusterClient for controller
// tests.
type fakeClusterClient struct {
	jobs       map[string]*batchv1.Job
	secrets    map[string]*corev1.Secret
	configMaps map[string]*corev1.ConfigMap
	logContent map[string]string

	listCalls   int
	appliedJobs []string
	deletedJobs []string
	listErr     error

	// onList runs before every listing with the current call count, letting
	// tests script status transitions across polls.
	onList func(call int, jobs map[string]*batchv1.Job)
}

func newFakeClusterClient() *fakeClusterClient {
	return &fakeClusterClient{
		jobs:       map[string]*batchv1.Job{},
		secrets:    map[string]*corev1.Secret{},
		configMaps: map[string]*corev1.ConfigMap{},
		logContent: map[string]string{},
	}
}

func (f *fakeClusterClient) ListJobs(ctx context.Context, namespace string) ([]batchv1.Job, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.onList != nil {
		f.onList(f.listCalls, f.jobs)
	}
	items := make([]batchv1.Job, 0, len(f.jobs))
	for _, j := range f.jobs {
		items = append(items, *j)
	}
	return items, nil
}

func (f *fakeClusterClient) ApplyJob(ctx context.Context, namespace string, job *batchv1.Job) (*batchv1.Job, error) {
	f.appliedJobs = append(f.appliedJobs, job.Name)
	stored := job.DeepCopy()
	if stored.UID == "" {
		stored.UID = types.UID(job.Name + "-uid")
	}
	f.jobs[job.Name] = stored
	return stored.DeepCopy(), nil
}

func (f *fakeClusterClient) ApplySecret(ctx context.Context, namespace string, secret *corev1.Secret) error {
	f.secrets[secret.Name] = secret.DeepCopy()
	return nil
}

func (f *fakeClusterClient) ApplyConfigMap(ctx context.Context, namespace string, configMap *corev1.ConfigMap) error {
	f.configMaps[configMap.Name] = configMap.DeepCopy()
	return nil
}

func (f *fakeClusterClient) DeleteJob(ctx context.Context, namespace, name string) error {
	f.deletedJobs = append(f.deletedJobs, name)
	delete(f.jobs, name)
	return nil
}

func (f *fakeClusterClient) JobLogs(ctx context.Context, namespace, name string, follow bool, output io.Writer) error {
	content, ok := f.logContent[name]
	if !ok {
		return errors.NewNotFound(schema.GroupResource{Group: "batch", Resource: "jobs"}, name)
	}
	_, err := io.WriteString(output, content)
	return err
}

// addJob seeds a job resource with the given counters.
func (f *fakeClusterClient) addJob(name string, succeeded, failed int32, backoffLimit *int32) {
	f.jobs[name] = &batchv1.Job{
		ObjectMeta: jobMeta(name),
		Spec:       batchv1.JobSpec{BackoffLimit: backoffLimit},
		Status: batchv1.JobStatus{
			Succeeded: succeeded,
			Failed:    failed,
		},
	}
}
