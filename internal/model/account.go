package model

// Account is the tenant owning conversations, campaigns and a send policy.
type Account struct {
	ID              int    `db:"id" json:"id"`
	Name            string `db:"name" json:"name"`
	// GatewayInstance is the WhatsApp gateway instance the account's
	// reactivation and follow-up messages go out through.
	GatewayInstance string `db:"gateway_instance" json:"gateway_instance"`
	// PromptContext is the account-level context fed to the generation
	// service for follow-up payloads.
	PromptContext string `db:"prompt_context" json:"prompt_context"`
}
