package application

import "expvar"

// Counters published under "accounts" on /api/debug/vars.
var metrics = expvar.NewMap("accounts")

const (
	metricSignups         = "signups"
	metricActivations     = "activations"
	metricActivationFails = "activation_failures"
	metricLogins          = "logins"
	metricLoginFailures   = "login_failures"
	metricPasswordResets  = "password_resets"
	metricPasswordChanges = "password_changes"
)
