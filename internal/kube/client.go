// Package kube implements the narrow cluster client consumed by the job
// controller on top of the typed Kubernetes clientset.
package kube

import (
	"context"
	"fmt"
	"io"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	ctrlconfig "sigs.k8s.io/controller-runtime/pkg/client/config"

	"foreman/pkg/logging"
)

// jobNameLabel is set by the batch controller on every pod a job owns.
const jobNameLabel = "job-name"

// Client talks to one cluster through the typed clientset. It carries no
// state beyond the connection; namespace scoping is per call.
type Client struct {
	clientset kubernetes.Interface
}

// New wraps an existing clientset. Used directly in tests with the fake
// clientset.
func New(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

// NewForConfig creates a client from a REST config.
func NewForConfig(config *rest.Config) (*Client, error) {
	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes clientset: %w", err)
	}
	return New(clientset), nil
}

// NewFromEnvironment resolves connection settings the standard way:
// in-cluster config when running inside a pod, otherwise KUBECONFIG or
// ~/.kube/config.
func NewFromEnvironment() (*Client, error) {
	config, err := ctrlconfig.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cluster configuration: %w", err)
	}
	return NewForConfig(config)
}

// ListJobs returns all job resources in the namespace.
func (c *Client) ListJobs(ctx context.Context, namespace string) ([]batchv1.Job, error) {
	list, err := c.clientset.BatchV1().Jobs(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

// ApplyJob creates the job, or updates its metadata in place when a resource
// with the same name already exists. Job specs are content-addressed by name,
// so an existing resource carries the same spec by construction. The returned
// resource carries the cluster-assigned fields, the UID in particular.
func (c *Client) ApplyJob(ctx context.Context, namespace string, job *batchv1.Job) (*batchv1.Job, error) {
	jobs := c.clientset.BatchV1().Jobs(namespace)

	created, err := jobs.Create(ctx, job, metav1.CreateOptions{})
	if err == nil {
		return created, nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return nil, err
	}

	existing, err := jobs.Get(ctx, job.Name, metav1.GetOptions{})
	if err != nil {
		return nil, err
	}
	updated := existing.DeepCopy()
	updated.Annotations = job.Annotations
	updated.Labels = job.Labels
	return jobs.Update(ctx, updated, metav1.UpdateOptions{})
}

// ApplySecret creates or updates the secret.
func (c *Client) ApplySecret(ctx context.Context, namespace string, secret *corev1.Secret) error {
	secrets := c.clientset.CoreV1().Secrets(namespace)

	_, err := secrets.Create(ctx, secret, metav1.CreateOptions{})
	if !apierrors.IsAlreadyExists(err) {
		return err
	}
	_, err = secrets.Update(ctx, secret, metav1.UpdateOptions{})
	return err
}

// ApplyConfigMap creates or updates the config map.
func (c *Client) ApplyConfigMap(ctx context.Context, namespace string, configMap *corev1.ConfigMap) error {
	configMaps := c.clientset.CoreV1().ConfigMaps(namespace)

	_, err := configMaps.Create(ctx, configMap, metav1.CreateOptions{})
	if !apierrors.IsAlreadyExists(err) {
		return err
	}
	_, err = configMaps.Update(ctx, configMap, metav1.UpdateOptions{})
	return err
}

// DeleteJob removes the job and, via background propagation, the pods it
// owns.
func (c *Client) DeleteJob(ctx context.Context, namespace, name string) error {
	propagation := metav1.DeletePropagationBackground
	return c.clientset.BatchV1().Jobs(namespace).Delete(ctx, name, metav1.DeleteOptions{
		PropagationPolicy: &propagation,
	})
}

// JobLogs streams container logs for every pod the job owns into output, in
// pod name order as returned by the API.
func (c *Client) JobLogs(ctx context.Context, namespace, name string, follow bool, output io.Writer) error {
	selector := labels.Set{jobNameLabel: name}.AsSelector().String()
	pods, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return err
	}
	if len(pods.Items) == 0 {
		return fmt.Errorf("no pods found for job %s/%s", namespace, name)
	}

	for _, pod := range pods.Items {
		logging.Debug("Kube", "fetching logs from pod %s/%s", namespace, pod.Name)
		req := c.clientset.CoreV1().Pods(namespace).GetLogs(pod.Name, &corev1.PodLogOptions{Follow: follow})
		stream, err := req.Stream(ctx)
		if err != nil {
			return fmt.Errorf("failed to stream logs from pod %s/%s: %w", namespace, pod.Name, err)
		}
		_, copyErr := io.Copy(output, stream)
		closeErr := stream.Close()
		if copyErr != nil {
			return fmt.Errorf("failed to copy logs from pod %s/%s: %w", namespace, pod.Name, copyErr)
		}
		if closeErr != nil {
			return closeErr
		}
	}

	return nil
}
