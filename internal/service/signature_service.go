package service

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"eseva-portal/internal/core/ports"
)

// PayUSignatureService implements ports.PayUSigner. The hash formulas are
// position dependent: every empty placeholder pipe must be present.
type PayUSignatureService struct {
	merchantKey string
	salt        string
}

// NewPayUSignatureService creates a signer for one merchant key/salt pair.
func NewPayUSignatureService(merchantKey, salt string) *PayUSignatureService {
	return &PayUSignatureService{merchantKey: merchantKey, salt: salt}
}

// SignRequest computes
// sha512(key|txnid|amount|productinfo|firstname|email|udf1|udf2|udf3|udf4|udf5||||||salt).
func (s *PayUSignatureService) SignRequest(req ports.PayURequest) string {
	fields := []string{
		req.Key, req.TxnID, req.Amount, req.ProductInfo, req.FirstName, req.Email,
		req.UDF1, req.UDF2, req.UDF3, req.UDF4, req.UDF5,
		"", "", "", "", "",
		s.salt,
	}
	return sha512Hex(strings.Join(fields, "|"))
}

// VerifyResponse recomputes
// sha512(salt|status|||||||||||email|firstname|productinfo|amount|txnid|key)
// and compares it with the posted hash in constant time.
func (s *PayUSignatureService) VerifyResponse(resp ports.PayUResponse) bool {
	if resp.Hash == "" {
		return false
	}
	fields := []string{s.salt, resp.Status}
	fields = append(fields, make([]string, 10)...)
	fields = append(fields, resp.Email, resp.FirstName, resp.ProductInfo, resp.Amount, resp.TxnID, s.merchantKey)

	expected := sha512Hex(strings.Join(fields, "|"))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(resp.Hash))) == 1
}

func sha512Hex(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
