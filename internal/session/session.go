package session

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"foreman/internal/controller"
	"foreman/internal/job"
	"foreman/internal/logs"
	"foreman/pkg/logging"
)

const subsystem = "Session"

const (
	// DefaultBinary is the cluster-management CLI invoked inside the job.
	DefaultBinary = "cluster-cli"

	defaultCheckInterval = 10 * time.Second
	defaultTimeout       = 30 * time.Minute
)

// CredentialsProvider resolves the short-lived access token a session embeds
// into its jobs. The credential subsystem behind it is an external
// collaborator; this package neither rotates nor stores secrets.
type CredentialsProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticCredentials is a CredentialsProvider over an already-resolved token.
type StaticCredentials string

func (c StaticCredentials) AccessToken(ctx context.Context) (string, error) {
	return string(c), nil
}

// Opts configures a session.
type Opts struct {
	// AccountID is the target account identifier. Part of job identity.
	AccountID string

	// Region is the target region. Part of job identity.
	Region string

	// OrgID scopes the CLI login to an organization. Execution context
	// only, excluded from job identity.
	OrgID string

	// Image is the CLI container image. Part of job identity.
	Image string

	// ServiceAccount runs the job pod. Part of job identity.
	ServiceAccount string

	// Binary overrides the CLI binary name; defaults to DefaultBinary.
	Binary string

	// DryRun appends the CLI's dry-run flag to every command. Part of job
	// identity.
	DryRun bool

	// LogDir is where retrieved job logs are stored; defaults to the
	// system temp directory.
	LogDir string

	// CheckInterval and Timeout govern the completion wait of Run.
	CheckInterval time.Duration
	Timeout       time.Duration
}

// Result is the outcome of a successfully completed command.
type Result struct {
	// Status is always SUCCESS for results returned without error.
	Status controller.JobStatus

	// Command is the CLI command that was executed.
	Command string

	// Logs is the handle to the stored job logs. Cleanup is the caller's
	// responsibility.
	Logs *logs.Handle
}

// Session submits cluster-management CLI commands as controller-managed
// jobs. One session is scoped to one account, region and credential set;
// like the controller it owns, it is not safe for concurrent use.
type Session struct {
	controller *controller.Controller
	opts       Opts
	token      string
	id         string
}

// New resolves the session's access token and returns a ready session.
func New(ctx context.Context, ctrl *controller.Controller, creds CredentialsProvider, opts Opts) (*Session, error) {
	token, err := creds.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve access token: %w", err)
	}

	if opts.Binary == "" {
		opts.Binary = DefaultBinary
	}
	if opts.LogDir == "" {
		opts.LogDir = os.TempDir()
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = defaultCheckInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	return &Session{
		controller: ctrl,
		opts:       opts,
		token:      token,
		id:         uuid.NewString(),
	}, nil
}

// ID returns the session correlation identifier attached to every job this
// session launches.
func (s *Session) ID() string {
	return s.id
}

// Definition builds the job definition for command without submitting it,
// for callers that render or inspect manifests.
func (s *Session) Definition(command string) job.Definition {
	return &cliJob{
		binary:         s.opts.Binary,
		command:        command,
		account:        s.opts.AccountID,
		region:         s.opts.Region,
		dryRun:         s.opts.DryRun,
		image:          s.opts.Image,
		serviceAccount: s.opts.ServiceAccount,
		orgID:          s.opts.OrgID,
		token:          s.token,
		sessionID:      s.id,
	}
}

// Run submits command as a job, waits for it and retrieves its logs. A
// command that reaches any terminal status other than SUCCESS comes back as
// an ExecutionError carrying the command and the log handle. Failed jobs are
// replaced on resubmission; successful or running ones deduplicate.
func (s *Session) Run(ctx context.Context, command string) (*Result, error) {
	d := s.Definition(command)
	name, err := job.Name(d)
	if err != nil {
		return nil, err
	}

	logging.Info(subsystem, "running %q as job %s", command, name)
	status, err := s.controller.EnqueueAndWait(ctx, d, s.opts.CheckInterval, s.opts.Timeout, controller.ReplaceFailed)
	if err != nil {
		return nil, err
	}

	handle, logErr := s.controller.StoreJobLogs(ctx, name, s.opts.LogDir)
	if logErr != nil {
		logging.Warn(subsystem, "failed to retrieve logs for job %s: %s", name, logErr)
		handle = nil
	}

	if status != controller.StatusSuccess {
		return nil, &ExecutionError{Status: status, Command: command, Logs: handle}
	}
	if logErr != nil {
		return nil, fmt.Errorf("job %s succeeded but log retrieval failed: %w", name, logErr)
	}

	return &Result{Status: status, Command: command, Logs: handle}, nil
}
