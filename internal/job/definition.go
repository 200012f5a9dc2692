package job

import (
	"fmt"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// GenerationAnnotation carries the job type's generation version on every
	// created job resource.
	GenerationAnnotation = "foreman.io/generation"

	// maxNameLength is the Kubernetes resource name limit. When a prefix
	// would overflow it, the prefix is truncated, never the digest.
	maxNameLength = 63
)

// Definition describes one unit of work: how to name it, what identifies it,
// and how to render its execution spec. Implementations produce descriptions
// only and must not perform I/O.
type Definition interface {
	// NamePrefix is a stable string grouping all jobs of one type.
	NamePrefix() string

	// Identity returns the structured value that uniquely identifies what
	// this job does. Infrastructure-only fields (credentials, org context)
	// must not be part of it.
	Identity() any

	// Generation is a developer-maintained version constant for this job
	// type's spec-rendering logic. Bump it when JobSpec changes shape.
	Generation() string

	// JobSpec renders the container/pod execution specification. The spec
	// must set TTLSecondsAfterFinished; the controller rejects specs that
	// do not.
	JobSpec() *batchv1.JobSpec
}

// Annotated is implemented by definitions that attach extra annotations to
// the built job resource.
type Annotated interface {
	Annotations() map[string]string
}

// Labeled is implemented by definitions that attach labels to the built job
// resource.
type Labeled interface {
	Labels() map[string]string
}

// SecretProvider is implemented by definitions that need named secret values
// exposed to the job, typically as environment variables sourced from the
// companion secret built by BuildSecret.
type SecretProvider interface {
	SecretData() map[string]string
}

// ScriptProvider is implemented by definitions that need named file contents
// mounted into the job, via the companion config map built by BuildScripts.
type ScriptProvider interface {
	Scripts() map[string]string
}

// Name derives the deterministic job name {prefix}-{digest}. Definitions with
// equal identity and equal prefix always produce the same name.
func Name(d Definition) (string, error) {
	digest, err := IdentityDigest(d.Identity(), DefaultDigestLength)
	if err != nil {
		return "", fmt.Errorf("failed to digest identity for %q: %w", d.NamePrefix(), err)
	}

	prefix := d.NamePrefix()
	if len(prefix)+1+len(digest) > maxNameLength {
		prefix = prefix[:maxNameLength-1-len(digest)]
	}
	return prefix + "-" + digest, nil
}

// Build assembles the final job resource: derived name, labels, and the
// generation annotation merged into any definition-supplied annotations.
func Build(d Definition) (*batchv1.Job, error) {
	spec := d.JobSpec()
	if spec == nil {
		return nil, fmt.Errorf("job definition %q renders no spec", d.NamePrefix())
	}

	name, err := Name(d)
	if err != nil {
		return nil, err
	}

	annotations := map[string]string{}
	if a, ok := d.(Annotated); ok {
		for k, v := range a.Annotations() {
			annotations[k] = v
		}
	}
	annotations[GenerationAnnotation] = d.Generation()

	var labels map[string]string
	if l, ok := d.(Labeled); ok {
		labels = l.Labels()
	}

	return &batchv1.Job{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "batch/v1",
			Kind:       "Job",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Annotations: annotations,
			Labels:      labels,
		},
		Spec: *spec,
	}, nil
}

// BuildSecret assembles the companion secret holding the definition's secret
// data, named after the job so the rendered spec can reference it. Returns
// nil when the definition carries no secret data.
func BuildSecret(d Definition) (*corev1.Secret, error) {
	p, ok := d.(SecretProvider)
	if !ok || len(p.SecretData()) == 0 {
		return nil, nil
	}

	name, err := Name(d)
	if err != nil {
		return nil, err
	}

	return &corev1.Secret{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "Secret",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: name,
		},
		Type:       corev1.SecretTypeOpaque,
		StringData: p.SecretData(),
	}, nil
}

// BuildScripts assembles the companion config map holding the definition's
// script files, named after the job so the rendered spec can mount it.
// Returns nil when the definition carries no scripts.
func BuildScripts(d Definition) (*corev1.ConfigMap, error) {
	p, ok := d.(ScriptProvider)
	if !ok || len(p.Scripts()) == 0 {
		return nil, nil
	}

	name, err := Name(d)
	if err != nil {
		return nil, err
	}

	return &corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "ConfigMap",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: name,
		},
		Data: p.Scripts(),
	}, nil
}
