package payload

// Capabilities maps a resource to abilities on it, each with a list of
// caveats.
type Capabilities = map[string]map[string][]map[string]any

// PayloadModel is the JWT claims set of a UCAN. Field order is the order the
// claims are written in.
type PayloadModel struct {
	Aud string         `json:"aud"`
	Iss string         `json:"iss"`
	Cap Capabilities   `json:"cap"`
	Exp *int64         `json:"exp"`
	Ucv string         `json:"ucv"`
	Fct map[string]any `json:"fct,omitempty"`
	Prf []string       `json:"prf,omitempty"`
	Nbf int64          `json:"nbf,omitempty"`
	Nnc string         `json:"nnc,omitempty"`
}
