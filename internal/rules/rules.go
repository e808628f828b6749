package rules

// DefaultKeyRules returns the built-in sensitive key name rules.
func DefaultKeyRules() []Rule {
	return []Rule{
		{
			ID:          "password",
			Description: "Password or passphrase",
			Pattern:     `(?i)pass(?:word|wd|phrase)|^pass$|pwd`,
			Severity:    "high",
			Target:      TargetKey,
		},
		{
			ID:          "secret",
			Description: "Secret value",
			Pattern:     `(?i)secret`,
			Severity:    "high",
			Target:      TargetKey,
		},
		{
			ID:          "token",
			Description: "Access, refresh or session token",
			Pattern:     `(?i)token`,
			Severity:    "high",
			Target:      TargetKey,
		},
		{
			ID:          "api-key",
			Description: "API key",
			Pattern:     `(?i)api[_.-]?key`,
			Severity:    "high",
			Target:      TargetKey,
		},
		{
			ID:          "access-key",
			Description: "Access key",
			Pattern:     `(?i)access[_.-]?key`,
			Severity:    "high",
			Target:      TargetKey,
		},
		{
			ID:          "private-key",
			Description: "Private key",
			Pattern:     `(?i)private[_.-]?key`,
			Severity:    "high",
			Target:      TargetKey,
		},
		{
			ID:          "crypto-key",
			Description: "Signing, encryption or master key",
			Pattern:     `(?i)(?:signing|encryption|master|client|shared)[_.-]?key`,
			Severity:    "high",
			Target:      TargetKey,
		},
		{
			ID:          "credentials",
			Description: "Credentials",
			Pattern:     `(?i)credentials?|^creds$`,
			Severity:    "high",
			Target:      TargetKey,
		},
		{
			ID:          "authorization",
			Description: "Authorization header or bearer value",
			Pattern:     `(?i)authorization|bearer|^auth$`,
			Severity:    "medium",
			Target:      TargetKey,
		},
		{
			ID:          "connection-string",
			Description: "Connection string or DSN",
			Pattern:     `(?i)(?:^|[_.-])dsn$|connection[_.-]?string|conn[_.-]?str`,
			Severity:    "medium",
			Target:      TargetKey,
		},
	}
}

// DefaultAllowKeys returns key patterns exempt from key rules: references to
// secrets and their metadata rather than the secrets themselves.
func DefaultAllowKeys() []string {
	return []string{
		`(?i)[_.-](?:file|path|dir|ttl|length|expiry|expires|timeout|type|name|enabled|env)$`,
		`(?i)^(?:max|min)[_.-]?tokens?$`,
	}
}

// DefaultValueRules returns rules for values that identify themselves as
// credentials whatever key holds them.
func DefaultValueRules() []Rule {
	return []Rule{
		// AWS
		{
			ID:          "aws-access-key-id",
			Description: "AWS Access Key ID",
			Pattern:     `\b(?:A3T[A-Z0-9]|AKIA|AGPA|AIDA|AROA|AIPA|ANPA|ANVA|ASIA)[A-Z0-9]{16}\b`,
			Severity:    "high",
			Target:      TargetValue,
		},

		// Private Keys
		{
			ID:          "private-key-block",
			Description: "PEM private key",
			Pattern:     `-----BEGIN (?:RSA |DSA |EC |OPENSSH |PGP |ENCRYPTED )?PRIVATE KEY(?:[- ]BLOCK)?-----`,
			Severity:    "high",
			Target:      TargetValue,
		},

		// GitHub
		{
			ID:          "github-token",
			Description: "GitHub token",
			Pattern:     `(?:ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9]{36}|github_pat_[A-Za-z0-9_]{22,}`,
			Severity:    "high",
			Target:      TargetValue,
		},

		// GitLab
		{
			ID:          "gitlab-token",
			Description: "GitLab Personal Access Token",
			Pattern:     `glpat-[A-Za-z0-9\-_]{20,}`,
			Severity:    "high",
			Target:      TargetValue,
		},

		// Slack
		{
			ID:          "slack-token",
			Description: "Slack Token",
			Pattern:     `xox[baprs]-[A-Za-z0-9\-]{10,}`,
			Severity:    "high",
			Target:      TargetValue,
		},
		{
			ID:          "slack-webhook",
			Description: "Slack incoming webhook",
			Pattern:     `https://hooks\.slack\.com/services/[A-Za-z0-9+/]{40,}`,
			Severity:    "medium",
			Target:      TargetValue,
		},

		// Stripe
		{
			ID:          "stripe-key",
			Description: "Stripe secret or restricted key",
			Pattern:     `(?:sk|rk)_(?:live|test)_[A-Za-z0-9]{24,}`,
			Severity:    "high",
			Target:      TargetValue,
		},

		// Database URLs
		{
			ID:          "database-url",
			Description: "Connection URL with embedded credentials",
			Pattern:     `(?i)\b(?:postgres(?:ql)?|mysql|mariadb|mongodb(?:\+srv)?|redis|rediss|amqps?|mssql|sqlserver)://[^:/\s@]+:[^@\s]+@\S+`,
			Severity:    "high",
			Target:      TargetValue,
		},

		// JWT
		{
			ID:          "jwt",
			Description: "JSON Web Token",
			Pattern:     `eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]*`,
			Severity:    "medium",
			Target:      TargetValue,
		},

		// Google
		{
			ID:          "google-api-key",
			Description: "Google API Key",
			Pattern:     `AIza[A-Za-z0-9_\-]{35}`,
			Severity:    "high",
			Target:      TargetValue,
		},

		// Anthropic
		{
			ID:          "anthropic-api-key",
			Description: "Anthropic API Key",
			Pattern:     `sk-ant-[A-Za-z0-9_\-]{90,}`,
			Severity:    "high",
			Target:      TargetValue,
		},

		// OpenAI
		{
			ID:          "openai-api-key",
			Description: "OpenAI API Key",
			Pattern:     `sk-(?:proj-)?[A-Za-z0-9_\-]{48,}`,
			Severity:    "high",
			Target:      TargetValue,
		},

		// SendGrid
		{
			ID:          "sendgrid-api-key",
			Description: "SendGrid API Key",
			Pattern:     `SG\.[A-Za-z0-9_\-]{22,}\.[A-Za-z0-9_\-]{43,}`,
			Severity:    "high",
			Target:      TargetValue,
		},

		// npm
		{
			ID:          "npm-token",
			Description: "npm Access Token",
			Pattern:     `npm_[A-Za-z0-9]{36}`,
			Severity:    "high",
			Target:      TargetValue,
		},
	}
}
