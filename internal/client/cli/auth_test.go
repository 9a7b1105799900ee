package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"lexmail/internal/client/api"
	"lexmail/internal/client/session"
	"lexmail/internal/client/vault"
)

func quiet(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

func stubInputs(t *testing.T, answers map[string]string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		for key, answer := range answers {
			if strings.Contains(prompt, key) {
				return answer, nil
			}
		}
		return "", nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) {
		return append([]byte(nil), password...), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func stubConfirmation(t *testing.T, answer bool) {
	t.Helper()
	orig := getConfirmation
	getConfirmation = func(_ *bufio.Reader, _ string, _ io.Writer) (bool, error) { return answer, nil }
	t.Cleanup(func() { getConfirmation = orig })
}

type fakeSession struct {
	u *session.User
}

func (f *fakeSession) IsAuthenticated() bool { return f.u != nil }
func (f *fakeSession) User() *session.User   { return f.u }

type fakeAuthAPI struct {
	loginEmail    string
	loginPassword string
	loginUser     *session.User
	loginErr      error

	lastReg     api.Registration
	registerErr error

	updateFirst string
	updateLast  string
	updateErr   error

	deleteErr     error
	deleteCalled  bool
	logoutCalled  bool
	bootstrapErr  error
	bootstrapDone bool
}

func (f *fakeAuthAPI) Bootstrap(ctx context.Context) error {
	f.bootstrapDone = true
	return f.bootstrapErr
}
func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (*session.User, error) {
	f.loginEmail, f.loginPassword = email, password
	return f.loginUser, f.loginErr
}
func (f *fakeAuthAPI) Register(ctx context.Context, reg api.Registration) (*session.User, error) {
	f.lastReg = reg
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &session.User{Email: reg.Email}, nil
}
func (f *fakeAuthAPI) UpdateProfile(ctx context.Context, firstName, lastName string) (*session.User, error) {
	f.updateFirst, f.updateLast = firstName, lastName
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &session.User{FirstName: firstName, LastName: lastName}, nil
}
func (f *fakeAuthAPI) DeleteAccount(ctx context.Context) error {
	f.deleteCalled = true
	return f.deleteErr
}
func (f *fakeAuthAPI) Logout(ctx context.Context) { f.logoutCalled = true }

func newTestApp(auth *fakeAuthAPI, keys keyAPI, sess *fakeSession) *App {
	return &App{
		store:  sess,
		vault:  vault.New(),
		auth:   auth,
		keys:   keys,
		reader: bufio.NewReader(strings.NewReader("")),
	}
}

func TestLogin_Success(t *testing.T) {
	quiet(t)
	stubInputs(t, map[string]string{"email": "alice@example.org"}, []byte("secret"))

	f := &fakeAuthAPI{loginUser: &session.User{Email: "alice@example.org"}}
	a := newTestApp(f, nil, &fakeSession{})

	if err := a.Login(context.Background()); err != nil {
		t.Fatalf("Login err: %v", err)
	}
	if f.loginEmail != "alice@example.org" {
		t.Fatalf("Login email mismatch: %q", f.loginEmail)
	}
	if f.loginPassword != "secret" {
		t.Fatalf("Login password mismatch: %q", f.loginPassword)
	}
}

func TestLogin_FailurePropagates(t *testing.T) {
	quiet(t)
	stubInputs(t, map[string]string{"email": "alice@example.org"}, []byte("bad"))

	f := &fakeAuthAPI{loginErr: &api.AuthError{StatusCode: 401, Detail: "bad credentials"}}
	a := newTestApp(f, nil, &fakeSession{})

	if err := a.Login(context.Background()); err == nil {
		t.Fatal("want error from Login")
	}
}

func TestRegister_Success(t *testing.T) {
	quiet(t)
	stubInputs(t, map[string]string{
		"email":      "alice@example.org",
		"first name": "Alice",
		"last name":  "Andersson",
	}, []byte("secret"))

	f := &fakeAuthAPI{}
	a := newTestApp(f, nil, &fakeSession{})

	if err := a.Register(context.Background()); err != nil {
		t.Fatalf("Register err: %v", err)
	}
	want := api.Registration{
		Email:     "alice@example.org",
		Password:  "secret",
		FirstName: "Alice",
		LastName:  "Andersson",
	}
	if f.lastReg != want {
		t.Fatalf("Register payload mismatch: %+v", f.lastReg)
	}
}

func TestLogout(t *testing.T) {
	quiet(t)

	f := &fakeAuthAPI{}
	a := newTestApp(f, nil, &fakeSession{u: &session.User{Email: "a@b.com"}})

	if err := a.Logout(context.Background()); err != nil {
		t.Fatalf("Logout err: %v", err)
	}
	if !f.logoutCalled {
		t.Fatal("Logout not delegated to auth service")
	}
}

func TestWhoAmI(t *testing.T) {
	quiet(t)

	a := newTestApp(&fakeAuthAPI{}, nil, &fakeSession{u: &session.User{ID: 1, Email: "a@b.com"}})
	if err := a.WhoAmI(context.Background()); err != nil {
		t.Fatalf("WhoAmI err: %v", err)
	}
}

func TestWhoAmI_NotLoggedIn(t *testing.T) {
	quiet(t)

	a := newTestApp(&fakeAuthAPI{}, nil, &fakeSession{})
	if err := a.WhoAmI(context.Background()); err == nil {
		t.Fatal("want error when not logged in")
	}
}

func TestDeleteAccount_Confirmed(t *testing.T) {
	quiet(t)
	stubConfirmation(t, true)

	f := &fakeAuthAPI{}
	a := newTestApp(f, nil, &fakeSession{u: &session.User{Email: "a@b.com"}})

	if err := a.DeleteAccount(context.Background()); err != nil {
		t.Fatalf("DeleteAccount err: %v", err)
	}
	if !f.deleteCalled {
		t.Fatal("DeleteAccount not delegated")
	}
}

func TestDeleteAccount_Declined(t *testing.T) {
	quiet(t)
	stubConfirmation(t, false)

	f := &fakeAuthAPI{}
	a := newTestApp(f, nil, &fakeSession{u: &session.User{Email: "a@b.com"}})

	if err := a.DeleteAccount(context.Background()); err != nil {
		t.Fatalf("DeleteAccount err: %v", err)
	}
	if f.deleteCalled {
		t.Fatal("DeleteAccount must not run without confirmation")
	}
}

func TestDeleteAccount_ServerErrorPropagates(t *testing.T) {
	quiet(t)
	stubConfirmation(t, true)

	f := &fakeAuthAPI{deleteErr: errors.New("boom")}
	a := newTestApp(f, nil, &fakeSession{u: &session.User{Email: "a@b.com"}})

	if err := a.DeleteAccount(context.Background()); err == nil {
		t.Fatal("want error from DeleteAccount")
	}
}

func TestProfile(t *testing.T) {
	quiet(t)
	stubInputs(t, map[string]string{
		"first name": "Anna",
		"last name":  "Bergman",
	}, nil)

	f := &fakeAuthAPI{}
	a := newTestApp(f, nil, &fakeSession{u: &session.User{Email: "a@b.com"}})

	if err := a.Profile(context.Background()); err != nil {
		t.Fatalf("Profile err: %v", err)
	}
	if f.updateFirst != "Anna" || f.updateLast != "Bergman" {
		t.Fatalf("Profile payload mismatch: %q %q", f.updateFirst, f.updateLast)
	}
}
