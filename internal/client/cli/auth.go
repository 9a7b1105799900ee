package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"lexmail/internal/client/api"
	"lexmail/internal/common"
)

// getSimpleText, getPassword and getConfirmation are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getConfirmation = GetConfirmation

// Register prompts for the account details and attempts to create a new
// account. A successful registration also logs the user in.
//
// The password byte slice is securely wiped before returning. Validation
// failures are reported per field.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	firstName, err := getSimpleText(a.reader, "Enter first name", os.Stdout)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Enter last name", os.Stdout)
	if err != nil {
		return err
	}

	reg := api.Registration{
		Email:     email,
		Password:  string(password),
		FirstName: firstName,
		LastName:  lastName,
	}

	u, err := a.auth.Register(ctx, reg)
	if err != nil {
		var valErr *api.ValidationError
		if errors.As(err, &valErr) {
			for field, msgs := range valErr.Fields {
				for _, msg := range msgs {
					printlnFn(fmt.Sprintf("%s: %s", field, msg))
				}
			}
			return err
		}
		printlnFn("Registration failed:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Welcome, %s!", u.Email))
	return nil
}

// Login prompts for credentials and tries to authenticate. The password is
// securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		var authErr *api.AuthError
		if errors.As(err, &authErr) {
			printlnFn("Login failed:", authErr.Detail)
		} else {
			printlnFn("Login failed:", err.Error())
		}
		return err
	}

	printlnFn(fmt.Sprintf("Logged in as %s", u.Email))
	return nil
}

// WhoAmI prints the current user.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.store.User()
	if u == nil {
		printlnFn("Not logged in")
		return common.ErrNotAuthenticated
	}
	printlnFn(fmt.Sprintf("%s %s <%s> (id %d)", u.FirstName, u.LastName, u.Email, u.ID))
	return nil
}

// Logout tears the session down: tokens, stored user, key material.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	printlnFn("Logged out")
	return nil
}

// DeleteAccount asks for confirmation and removes the account server-side.
// The local session is torn down whether or not the server call succeeds.
func (a *App) DeleteAccount(ctx context.Context) error {
	ok, err := getConfirmation(a.reader, "Delete your account? This cannot be undone.", os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Cancelled")
		return nil
	}

	if err := a.auth.DeleteAccount(ctx); err != nil {
		printlnFn("Account deletion failed:", err.Error())
		return err
	}

	printlnFn("Account deleted")
	return nil
}
