package config

import (
	"strings"
)

// maskSecret masks a secret, keeping only the first and last 4 characters.
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}

	if len(secret) < 8 {
		return "***"
	}

	prefix := secret[:4]
	suffix := secret[len(secret)-4:]
	masked := strings.Repeat("*", len(secret)-8)

	return prefix + masked + suffix
}

// maskTelegramToken masks a Telegram token for display.
// Tokens have the form <bot_id>:<token>; the bot id stays visible for
// diagnostics.
func maskTelegramToken(token string) string {
	if token == "" {
		return ""
	}

	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return maskSecret(token)
	}

	return parts[0] + ":" + maskSecret(parts[1])
}

// Masked returns a copy of the configuration with secrets masked,
// suitable for display and logging.
func (c *Config) Masked() Config {
	masked := *c
	masked.LLM.OpenAI.APIKey = maskSecret(c.LLM.OpenAI.APIKey)
	masked.Channels.Telegram.Token = maskTelegramToken(c.Channels.Telegram.Token)
	return masked
}
