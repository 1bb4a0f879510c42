package gatewaysdk

import (
	"context"
	"errors"
	"sync"
)

// State is a step of the login flow.
type State int

const (
	StateIdle State = iota
	StateAuthenticating
	StateAuthenticated
	StatePasswordChangeRequired
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StatePasswordChangeRequired:
		return "password_change_required"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrFlowBusy is returned when an action is started while another one is
	// still in flight.
	ErrFlowBusy = errors.New("login flow: a request is already in progress")

	// ErrInvalidTransition is returned when an action does not apply to the
	// current state.
	ErrInvalidTransition = errors.New("login flow: action not allowed in current state")
)

// Snapshot is what a login screen renders.
type Snapshot struct {
	State           State
	Principal       *Principal
	IsAuthenticated bool
	IsLoading       bool
	Error           string

	// PendingPrincipalID is set while a password change is required.
	PendingPrincipalID string
}

// LoginFlow drives one login screen:
//
//	Idle -> Authenticating -> Authenticated | PasswordChangeRequired | Failed
//	PasswordChangeRequired -> Authenticating -> Authenticated
//	Failed -> Idle
//
// Entering Authenticated calls the redirect callback exactly once, after the
// call that caused it has returned.
type LoginFlow struct {
	client   *Client
	kind     string
	redirect func(path string)

	// OnTransition, when set, observes every state change. It runs with the
	// flow locked and must not call back into the flow.
	OnTransition func(from, to State)

	mu        sync.Mutex
	state     State
	principal *Principal
	lastErr   string
	pending   *pendingChange
}

type pendingChange struct {
	principalID string
	changeToken string
	oldPassword string
}

// NewLoginFlow creates a flow for kind. redirect receives the landing path.
func NewLoginFlow(client *Client, kind string, redirect func(path string)) *LoginFlow {
	return &LoginFlow{client: client, kind: kind, redirect: redirect}
}

// Snapshot returns the current view state.
func (f *LoginFlow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Snapshot{
		State:           f.state,
		IsAuthenticated: f.state == StateAuthenticated,
		IsLoading:       f.state == StateAuthenticating,
		Error:           f.lastErr,
	}
	if f.principal != nil {
		p := *f.principal
		s.Principal = &p
	}
	if f.pending != nil {
		s.PendingPrincipalID = f.pending.principalID
	}
	return s
}

// State returns the current state.
func (f *LoginFlow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Login submits credentials. login is the username, or the service number
// for personnel.
func (f *LoginFlow) Login(ctx context.Context, login, password string) error {
	if err := f.begin(StateIdle); err != nil {
		return err
	}

	req := LoginRequest{Password: password}
	if f.kind == KindPersonnel {
		req.ServiceNumber = login
	} else {
		req.Username = login
	}

	resp, err := f.client.Login(ctx, f.kind, req)

	var pcr *PasswordChangeRequiredError
	switch {
	case err == nil:
		f.succeed(resp)
		return nil
	case errors.As(err, &pcr):
		f.requireChange(pending(pcr, password))
		return nil
	default:
		f.fail(err, StateIdle, nil)
		return err
	}
}

// ChangePassword completes a pending change using the temporary password
// captured at login.
func (f *LoginFlow) ChangePassword(ctx context.Context, newPassword string) error {
	if err := f.begin(StatePasswordChangeRequired); err != nil {
		return err
	}

	f.mu.Lock()
	pc := f.pending
	f.mu.Unlock()

	old := pc.oldPassword
	resp, err := f.client.ChangePassword(ctx, f.kind, ChangePasswordRequest{
		ID:          pc.principalID,
		OldPassword: &old,
		NewPassword: newPassword,
		ChangeToken: pc.changeToken,
	})
	if err == nil {
		f.succeed(resp)
		return nil
	}

	// The server discards the pending change once it is exhausted or gone,
	// so only then does the flow start over.
	if errors.Is(err, ErrTooManyAttempts) || errors.Is(err, ErrInvalidChangeToken) {
		f.fail(err, StateIdle, nil)
	} else {
		f.fail(err, StatePasswordChangeRequired, pc)
	}
	return err
}

// Abort drops a pending password change and returns to Idle.
func (f *LoginFlow) Abort() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StatePasswordChangeRequired {
		return ErrInvalidTransition
	}
	f.pending = nil
	f.setLocked(StateIdle)
	return nil
}

// Logout revokes the session and returns to Idle.
func (f *LoginFlow) Logout(ctx context.Context) error {
	if err := f.begin(StateAuthenticated); err != nil {
		return err
	}

	err := f.client.Logout(ctx, f.kind)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.lastErr = Message(err)
		f.setLocked(StateAuthenticated)
		return err
	}
	f.principal = nil
	f.lastErr = ""
	f.setLocked(StateIdle)
	return nil
}

func pending(pcr *PasswordChangeRequiredError, password string) *pendingChange {
	return &pendingChange{
		principalID: pcr.PrincipalID,
		changeToken: pcr.ChangeToken,
		oldPassword: password,
	}
}

// begin moves from want to Authenticating.
func (f *LoginFlow) begin(want State) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateAuthenticating {
		return ErrFlowBusy
	}
	if f.state != want {
		return ErrInvalidTransition
	}
	f.lastErr = ""
	f.setLocked(StateAuthenticating)
	return nil
}

func (f *LoginFlow) succeed(resp *LoginResponse) {
	f.mu.Lock()
	p := resp.Principal
	f.principal = &p
	f.pending = nil
	f.setLocked(StateAuthenticated)
	redirect := f.redirect
	f.mu.Unlock()

	if redirect != nil {
		redirect(resp.RedirectTo)
	}
}

func (f *LoginFlow) requireChange(pc *pendingChange) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = pc
	f.setLocked(StatePasswordChangeRequired)
}

// fail surfaces err through Failed and settles in next.
func (f *LoginFlow) fail(err error, next State, pc *pendingChange) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastErr = Message(err)
	f.pending = pc
	f.setLocked(StateFailed)
	f.setLocked(next)
}

func (f *LoginFlow) setLocked(to State) {
	from := f.state
	f.state = to
	if f.OnTransition != nil && from != to {
		f.OnTransition(from, to)
	}
}
