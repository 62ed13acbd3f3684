package header

// Type is the only JWT typ accepted for UCANs.
const Type = "JWT"

// HeaderModel is the JOSE header of a UCAN JWT.
type HeaderModel struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}
