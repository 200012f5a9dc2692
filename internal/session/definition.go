package session

import (
	"fmt"
	"strings"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/utils/ptr"

	"foreman/internal/job"
)

const (
	jobNamePrefix = "cluster-cli"

	// jobGeneration versions the spec-rendering logic below. Bump it when
	// the shape of the rendered job changes.
	jobGeneration = "1"

	// TokenEnvVar is the environment variable the login preamble reads the
	// access token from, sourced from the companion secret.
	TokenEnvVar = "CLUSTER_CLI_TOKEN"

	// SessionAnnotation groups jobs launched by one session for post-mortem
	// diagnostics.
	SessionAnnotation = "foreman.io/session"

	scriptFileName = "command.sh"
	scriptsMount   = "/scripts"

	// Finished jobs stick around for a day for post-mortem log retrieval,
	// then the cluster garbage-collects them.
	jobTTLSeconds int32 = 86400

	// One pod failure is terminal. CLI commands against live infrastructure
	// are not safely retryable by the batch controller.
	jobBackoffLimit int32 = 1
)

// cliJob is the job definition for one CLI command.
type cliJob struct {
	binary         string
	command        string
	account        string
	region         string
	dryRun         bool
	image          string
	serviceAccount string

	// Execution context, excluded from identity.
	orgID     string
	token     string
	sessionID string
}

func (j *cliJob) NamePrefix() string { return jobNamePrefix }

func (j *cliJob) Generation() string { return jobGeneration }

func (j *cliJob) Identity() any {
	return map[string]any{
		"command":         j.command,
		"account_id":      j.account,
		"region":          j.region,
		"dry_run":         j.dryRun,
		"image":           j.image,
		"service_account": j.serviceAccount,
	}
}

func (j *cliJob) Annotations() map[string]string {
	return map[string]string{SessionAnnotation: j.sessionID}
}

func (j *cliJob) Labels() map[string]string {
	return map[string]string{"app.kubernetes.io/managed-by": "foreman"}
}

func (j *cliJob) SecretData() map[string]string {
	return map[string]string{TokenEnvVar: j.token}
}

func (j *cliJob) Scripts() map[string]string {
	return map[string]string{scriptFileName: j.script()}
}

// script assembles the login preamble and the command into the file the job
// executes.
func (j *cliJob) script() string {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	b.WriteString("set -euo pipefail\n\n")

	login := fmt.Sprintf("%s login --token=\"$%s\"", j.binary, TokenEnvVar)
	if j.orgID != "" {
		login += " --organization " + j.orgID
	}
	b.WriteString(login + "\n\n")

	cmd := j.binary + " " + j.command
	if j.dryRun {
		cmd += " --dry-run"
	}
	b.WriteString(cmd + "\n")

	return b.String()
}

func (j *cliJob) JobSpec() *batchv1.JobSpec {
	// The companion secret and config map share the job's derived name.
	name, err := job.Name(j)
	if err != nil {
		return nil
	}

	scriptMode := int32(0o755)
	return &batchv1.JobSpec{
		BackoffLimit:            ptr.To(jobBackoffLimit),
		TTLSecondsAfterFinished: ptr.To(jobTTLSeconds),
		Template: corev1.PodTemplateSpec{
			Spec: corev1.PodSpec{
				RestartPolicy:      corev1.RestartPolicyNever,
				ServiceAccountName: j.serviceAccount,
				Containers: []corev1.Container{{
					Name:    "cli",
					Image:   j.image,
					Command: []string{"/bin/bash", scriptsMount + "/" + scriptFileName},
					Env: []corev1.EnvVar{{
						Name: TokenEnvVar,
						ValueFrom: &corev1.EnvVarSource{
							SecretKeyRef: &corev1.SecretKeySelector{
								LocalObjectReference: corev1.LocalObjectReference{Name: name},
								Key:                  TokenEnvVar,
							},
						},
					}},
					VolumeMounts: []corev1.VolumeMount{{
						Name:      "scripts",
						MountPath: scriptsMount,
					}},
				}},
				Volumes: []corev1.Volume{{
					Name: "scripts",
					VolumeSource: corev1.VolumeSource{
						ConfigMap: &corev1.ConfigMapVolumeSource{
							LocalObjectReference: corev1.LocalObjectReference{Name: name},
							DefaultMode:          &scriptMode,
						},
					},
				}},
			},
		},
	}
}
