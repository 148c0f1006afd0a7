package model

type ClaimSignatureRequest struct {
	TokenID string `json:"token_id"`
	Amount  string `json:"amount"`
}

type ClaimSignatureResponse struct {
	Claim           Claim  `json:"claim"`
	ContractAddress string `json:"contract_address"`
}

// Claim carries everything the client needs to call the vault contract. ID
// references the issued claim for a later reissue.
type Claim struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	TokenID   string `json:"token_id"`
	Token     string `json:"token"`
	Amount    string `json:"amount"`
	Nonce     uint64 `json:"nonce"`
	Deadline  int64  `json:"deadline"`
	Signature string `json:"signature"`
}

type ReissueClaimRequest struct {
	ClaimID string `json:"claim_id"`
}

type BatchClaimSignatureRequest struct {
	Claims []ClaimSignatureRequest `json:"claims"`
}

type BatchClaimSignatureResponse struct {
	Claims          []Claim `json:"claims"`
	ContractAddress string  `json:"contract_address"`
}
