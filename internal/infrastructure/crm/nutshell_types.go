package crm

import "encoding/json"

// rpcEndpoint is the Nutshell JSON-RPC endpoint path
const rpcEndpoint = "/api/v1/json"

// rpcRequest is a Nutshell JSON-RPC request envelope
type rpcRequest struct {
	Method string `json:"method"`
	Params any    `json:"params"`
	ID     string `json:"id"`
}

// rpcError is the provider error object inside a response envelope
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rpcResponse is a Nutshell JSON-RPC response envelope. Result is decoded
// lazily because its shape depends on the method.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
	ID     string          `json:"id"`
}

// newLeadParams are the params for the newLead method
type newLeadParams struct {
	Lead leadPayload `json:"lead"`
}

// leadPayload is the provider-side lead shape
type leadPayload struct {
	Description string           `json:"description,omitempty"`
	Note        []string         `json:"note,omitempty"`
	Products    []productPayload `json:"products,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
}

// productPayload is a priced line on a provider lead
type productPayload struct {
	RelationshipName string       `json:"relationship_name"`
	Price            pricePayload `json:"price"`
}

// pricePayload carries an exact decimal amount string and its currency
type pricePayload struct {
	CurrencyShortname string `json:"currency_shortname"`
	Amount            string `json:"amount"`
}

// leadResult is the result shape of newLead
type leadResult struct {
	ID          json.Number `json:"id"`
	Description string      `json:"description"`
}

// deleteLeadParams are the params for the deleteLead method
type deleteLeadParams struct {
	LeadID string `json:"leadId"`
}

// newTaskParams are the params for the newTask method
type newTaskParams struct {
	Task taskPayload `json:"task"`
}

// taskPayload is the provider-side task shape, linked to an entity
type taskPayload struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Entity      entityPayload `json:"entity"`
}

// entityPayload links a task to a provider entity
type entityPayload struct {
	EntityType string `json:"entityType"`
	ID         string `json:"id"`
}
