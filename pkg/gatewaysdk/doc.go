/*
Package gatewaysdk is the client SDK for the firegate dashboard gateway.

# Client

Client wraps the HTTP API. It keeps the session cookie in a cookie jar and
also remembers the session token so the same client can call other services
with a Bearer header:

	client := gatewaysdk.NewClient("https://firegate.example.com")

	resp, err := client.Login(ctx, gatewaysdk.KindStationAdmin, gatewaysdk.LoginRequest{
		Username: "station7",
		Password: "correct horse battery staple",
	})

# Login flow

LoginFlow is the state machine behind a login screen. It serialises user
actions, turns a 409 password-change response into the PasswordChangeRequired
state and calls the redirect callback once the principal is authenticated:

	flow := gatewaysdk.NewLoginFlow(client, gatewaysdk.KindPersonnel, func(path string) {
		router.Navigate(path)
	})

	if err := flow.Login(ctx, "FS-1001", tempPassword); err != nil {
		showError(gatewaysdk.Message(err))
	}
	if flow.State() == gatewaysdk.StatePasswordChangeRequired {
		_ = flow.ChangePassword(ctx, newPassword)
	}

# Errors

Calls return one of:

  - *ValidationError: fields rejected locally or by the server
  - *AuthError: the server refused the request (bad credentials, no session,
    wrong role, expired change token)
  - *PasswordChangeRequiredError: credentials were right but the password is
    provisional
  - *NetworkError: no response was received

The server side writes the same catalogue through APIError.WriteError.
*/
package gatewaysdk
