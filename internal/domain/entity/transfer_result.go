package entity

// TransferResult is the terminal outcome of a deposit or withdraw attempt.
// Submissions never raise: every failure path, including a confirmation
// timeout, resolves to a result with Success=false. Never retried
// automatically. A timed-out submission may still complete on-chain later;
// TxHash is populated whenever the transaction was actually sent so the
// caller can check its true fate.
type TransferResult struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txHash,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TransferOK builds a successful result for the confirmed transaction.
func TransferOK(txHash string) TransferResult {
	return TransferResult{Success: true, TxHash: txHash}
}

// TransferFailed builds a failed result with a user-facing message.
func TransferFailed(msg string) TransferResult {
	return TransferResult{Success: false, Error: msg}
}
