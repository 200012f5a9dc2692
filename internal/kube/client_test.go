package kube

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func testJob(name string) *batchv1.Job {
	return &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Annotations: map[string]string{"foreman.io/generation": "v1"},
		},
	}
}

func mustApplyJob(t *testing.T, client *Client, namespace string, job *batchv1.Job) *batchv1.Job {
	t.Helper()
	applied, err := client.ApplyJob(context.Background(), namespace, job)
	require.NoError(t, err)
	require.NotNil(t, applied)
	return applied
}

func TestListJobs(t *testing.T) {
	client := New(fake.NewSimpleClientset())
	ctx := context.Background()

	jobs, err := client.ListJobs(ctx, "batch")
	require.NoError(t, err)
	assert.Empty(t, jobs)

	mustApplyJob(t, client, "batch", testJob("alpha"))
	mustApplyJob(t, client, "batch", testJob("beta"))

	jobs, err = client.ListJobs(ctx, "batch")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	// Other namespaces stay invisible.
	jobs, err = client.ListJobs(ctx, "elsewhere")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestApplyJob_UpdatesExistingMetadata(t *testing.T) {
	client := New(fake.NewSimpleClientset())
	ctx := context.Background()

	mustApplyJob(t, client, "batch", testJob("alpha"))

	updated := testJob("alpha")
	updated.Annotations["foreman.io/generation"] = "v2"
	applied := mustApplyJob(t, client, "batch", updated)
	assert.Equal(t, "v2", applied.Annotations["foreman.io/generation"])

	jobs, err := client.ListJobs(ctx, "batch")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "v2", jobs[0].Annotations["foreman.io/generation"])
}

func TestApplySecret_Upserts(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	client := New(clientset)
	ctx := context.Background()

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "alpha"},
		StringData: map[string]string{"ACCESS_TOKEN": "one"},
	}
	require.NoError(t, client.ApplySecret(ctx, "batch", secret))

	secret.StringData["ACCESS_TOKEN"] = "two"
	require.NoError(t, client.ApplySecret(ctx, "batch", secret))

	stored, err := clientset.CoreV1().Secrets("batch").Get(ctx, "alpha", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "two", stored.StringData["ACCESS_TOKEN"])
}

func TestDeleteJob(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	client := New(clientset)
	ctx := context.Background()

	mustApplyJob(t, client, "batch", testJob("alpha"))
	require.NoError(t, client.DeleteJob(ctx, "batch", "alpha"))

	_, err := clientset.BatchV1().Jobs("batch").Get(ctx, "alpha", metav1.GetOptions{})
	assert.True(t, apierrors.IsNotFound(err))

	// Deleting a job that never existed propagates the API error unmodified.
	err = client.DeleteJob(ctx, "batch", "ghost")
	assert.True(t, apierrors.IsNotFound(err))
}

func TestJobLogs(t *testing.T) {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "alpha-xyz",
			Namespace: "batch",
			Labels:    map[string]string{jobNameLabel: "alpha"},
		},
	}
	client := New(fake.NewSimpleClientset(pod))

	var buf bytes.Buffer
	require.NoError(t, client.JobLogs(context.Background(), "batch", "alpha", false, &buf))
	// The fake clientset serves a fixed log body; what matters here is that
	// the pod was selected and its stream copied through.
	assert.NotEmpty(t, buf.String())
}

func TestJobLogs_NoPods(t *testing.T) {
	client := New(fake.NewSimpleClientset())

	var buf bytes.Buffer
	err := client.JobLogs(context.Background(), "batch", "ghost", false, &buf)
	assert.Error(t, err)
}
