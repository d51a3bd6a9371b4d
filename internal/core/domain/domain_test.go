package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_IsActive(t *testing.T) {
	tests := []struct {
		name   string
		status AccountStatus
		want   bool
	}{
		{"active", AccountStatusActive, true},
		{"suspended", AccountStatusSuspended, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{Status: tt.status}
			assert.Equal(t, tt.want, a.IsActive())
		})
	}
}

func TestLedgerEntry_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status LedgerStatus
		want   bool
	}{
		{"pending", LedgerStatusPending, false},
		{"success", LedgerStatusSuccess, true},
		{"failed", LedgerStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &LedgerEntry{Status: tt.status}
			assert.Equal(t, tt.want, e.IsTerminal())
		})
	}
}

func TestLedgerEntry_SignedAmount(t *testing.T) {
	assert.Equal(t, int64(500), (&LedgerEntry{Direction: DirectionCredit, Amount: 500}).SignedAmount())
	assert.Equal(t, int64(-125), (&LedgerEntry{Direction: DirectionDebit, Amount: 125}).SignedAmount())
}

func TestLedgerTotals_Drift(t *testing.T) {
	totals := LedgerTotals{Credits: 1000, Debits: 300, StoredBalance: 700}
	assert.Equal(t, int64(700), totals.Expected())
	assert.Zero(t, totals.Drift())

	totals.StoredBalance = 900
	assert.Equal(t, int64(200), totals.Drift())
}

func TestParseRupees(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"500", 50000, false},
		{"500.00", 50000, false},
		{"2.5", 250, false},
		{"0.01", 1, false},
		{"1.005", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRupees(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRupeesToPaise_RejectsOverflow(t *testing.T) {
	for _, in := range []string{"184467440737095521.16", "92233720368547758.08", "100000000.01"} {
		t.Run(in, func(t *testing.T) {
			got, err := RupeesToPaise(decimal.RequireFromString(in))
			assert.ErrorIs(t, err, ErrAmountTooLarge)
			assert.Zero(t, got)
		})
	}

	got, err := RupeesToPaise(decimal.RequireFromString("100000000"))
	require.NoError(t, err)
	assert.Equal(t, MaxAmount, got)
}

func TestRupeesToPaise_RejectsSubPaisa(t *testing.T) {
	_, err := RupeesToPaise(decimal.RequireFromString("10.999"))
	assert.ErrorIs(t, err, ErrAmountPrecision)
}

func TestFormatRupees(t *testing.T) {
	assert.Equal(t, "2.00", FormatRupees(200))
	assert.Equal(t, "500.00", FormatRupees(50000))
	assert.Equal(t, "0.05", FormatRupees(5))
}

func TestStagedUpload_IsExpired(t *testing.T) {
	now := time.Now()
	s := &StagedUpload{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, s.IsExpired(now))
	assert.True(t, s.IsExpired(now.Add(time.Hour)))
}

func TestServiceStatus_Valid(t *testing.T) {
	assert.True(t, ServiceStatusInProgress.Valid())
	assert.True(t, ServiceStatusRejected.Valid())
	assert.False(t, ServiceStatus("filed").Valid())
}

func TestServiceDefinition_MissingInputs(t *testing.T) {
	def, ok := LookupService(ServiceITR)
	require.True(t, ok)

	missing := def.MissingInputs(
		map[string]string{"aadharCardNo": "1234", "panCardNo": " ", "accountNo": "99"},
		map[string]bool{"aadharFile": true, "passbookFile": true},
	)
	assert.Equal(t, []string{"panCardNo", "ifscCode", "panCardFile"}, missing)

	missing = def.MissingInputs(
		map[string]string{"aadharCardNo": "1", "panCardNo": "2", "accountNo": "3", "ifscCode": "4"},
		map[string]bool{"aadharFile": true, "panCardFile": true, "passbookFile": true},
	)
	assert.Empty(t, missing)
}

func TestServiceDefinition_FromForm(t *testing.T) {
	def, _ := LookupService(ServiceITR)
	v := def.FromForm(
		map[string]string{"aadharCardNo": "1111", "panCardNo": "abcde1234f", "accountNo": "42", "ifscCode": "sbin0001"},
		map[string]string{"aadharFile": "/uploads/itr/a.pdf", "panCardFile": "/uploads/itr/p.pdf", "passbookFile": "/uploads/itr/b.pdf"},
	)
	itr, ok := v.(ITR)
	require.True(t, ok)
	assert.Equal(t, "ABCDE1234F", itr.PanCardNo)
	assert.Equal(t, "SBIN0001", itr.IFSCCode)
	assert.NoError(t, itr.Validate())

	bulk, _ := LookupService(ServiceRtps)
	assert.Nil(t, bulk.FromForm(nil, nil))
}

func TestVariant_Validate(t *testing.T) {
	err := Rtps{District: "Patna", ReferenceNumber: "R-1"}.Validate()
	var missing *MissingInputError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"block"}, missing.Names)

	// District is optional for labour cards.
	assert.NoError(t, LabourCard{Block: "B", Name: "N", ApplicationNumber: "A-1"}.Validate())
	assert.NoError(t, VoterCard{State: "BR", Name: "N", ReferenceNumber: "V-1"}.Validate())
}

func TestDecodeVariant(t *testing.T) {
	data, err := json.Marshal(VoterCard{State: "BR", Name: "Ravi", ReferenceNumber: "V-9"})
	require.NoError(t, err)

	v, err := DecodeVariant(ServiceVoterCard, data)
	require.NoError(t, err)
	assert.Equal(t, VoterCard{State: "BR", Name: "Ravi", ReferenceNumber: "V-9"}, v)

	_, err = DecodeVariant(ServiceType("Passport"), data)
	assert.Error(t, err)
}

func TestWalletServiceTypes(t *testing.T) {
	types := WalletServiceTypes()
	assert.NotContains(t, types, ServiceITR)
	assert.Contains(t, types, ServicePanCard)
	assert.Contains(t, types, ServiceVoterCard)
}

func TestNewApplication_LinksWrapperAndVariant(t *testing.T) {
	accountID := uuid.New()
	now := time.Now().UTC()
	app := NewApplication(accountID, Rtps{District: "D", Block: "B", ReferenceNumber: "R"}, 37000, ServiceStatusPending, now)

	assert.Equal(t, app.Variant.ID, app.Service.VariantID)
	assert.Equal(t, ServiceRtps, app.Service.ServiceType)
	assert.Equal(t, ServiceRtps, app.Variant.ServiceType)
	assert.Equal(t, accountID, app.Service.AccountID)
	assert.Equal(t, int64(37000), app.Variant.Price)
	assert.Equal(t, ServiceStatusPending, app.Variant.Status)
}

func TestMissingInputError_Message(t *testing.T) {
	err := &MissingInputError{Names: []string{"photo", "signature"}}
	assert.Equal(t, "photo, signature required", err.Error())
}

func TestServiceTypes_Sorted(t *testing.T) {
	types := ServiceTypes()
	require.Len(t, types, 6)
	assert.Equal(t, ServiceITR, types[0])
	assert.Equal(t, ServiceVoterCard, types[5])
}
