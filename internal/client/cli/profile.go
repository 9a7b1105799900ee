package cli

import (
	"context"
	"fmt"
	"os"
)

// Profile prompts for a new first and last name and pushes the change to
// the server. The stored user is updated on success.
func (a *App) Profile(ctx context.Context) error {
	firstName, err := getSimpleText(a.reader, "Enter first name", os.Stdout)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Enter last name", os.Stdout)
	if err != nil {
		return err
	}

	u, err := a.auth.UpdateProfile(ctx, firstName, lastName)
	if err != nil {
		printlnFn("Profile update failed:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Profile updated: %s %s", u.FirstName, u.LastName))
	return nil
}
