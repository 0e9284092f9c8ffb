package builder

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	DefaultAddress    = "0xA47Dd499191db54A4829cdf3de2417E527c3b042"
	DefaultMaxFeeRate = "0.01%"

	primaryType = "ApproveBuilderFee"
)

var ErrInvalidBuilderAddress = errors.New("invalid builder address")

// Approval is an unsigned ApproveBuilderFee request ready for
// eth_signTypedData_v4.
type Approval struct {
	TypedData apitypes.TypedData `json:"typed_data"`
	Digest    string             `json:"digest"`
	Builder   string             `json:"builder"`
	Nonce     uint64             `json:"nonce"`
}

// Approver builds builder-fee approval payloads for one builder.
type Approver struct {
	builder    common.Address
	maxFeeRate string
	now        func() time.Time
}

// NewApprover creates an approver. Empty arguments fall back to defaults.
func NewApprover(builderAddress, maxFeeRate string) (*Approver, error) {
	if builderAddress == "" {
		builderAddress = DefaultAddress
	}
	if !common.IsHexAddress(builderAddress) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBuilderAddress, builderAddress)
	}
	if maxFeeRate == "" {
		maxFeeRate = DefaultMaxFeeRate
	}
	return &Approver{
		builder:    common.HexToAddress(builderAddress),
		maxFeeRate: maxFeeRate,
		now:        time.Now,
	}, nil
}

// Approval returns the typed data and its EIP-712 digest. A zero nonce is
// replaced by the current time in milliseconds.
func (a *Approver) Approval(nonce uint64) (*Approval, error) {
	if nonce == 0 {
		nonce = uint64(a.now().UnixMilli())
	}

	typed := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			primaryType: {
				{Name: "builder", Type: "address"},
				{Name: "maxFeeRate", Type: "string"},
				{Name: "nonce", Type: "uint64"},
			},
		},
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              "Exchange",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(1),
			VerifyingContract: common.Address{}.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"builder":    a.builder.Hex(),
			"maxFeeRate": a.maxFeeRate,
			"nonce":      strconv.FormatUint(nonce, 10),
		},
	}

	digest, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}

	return &Approval{
		TypedData: typed,
		Digest:    hexutil.Encode(digest),
		Builder:   a.builder.Hex(),
		Nonce:     nonce,
	}, nil
}
