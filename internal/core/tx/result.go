package tx

import "fmt"

// Result represents a transaction result code
type Result int

// Transaction result codes, organized by category: tes, tec, tef, tem.
// A non-success result never leaves any state change behind.
const (
	// tesSUCCESS (0)
	TesSUCCESS Result = 0

	// tec codes (100-199): well-formed but rejected against current ledger state
	TecNO_PERMISSION               Result = 139
	TecNO_ENTRY                    Result = 140
	TecINTERNAL                    Result = 144
	TecHAS_OBLIGATIONS             Result = 151
	TecINSUFFICIENT_FUNDS          Result = 159
	TecNOT_APPROVED                Result = 170
	TecINSUFFICIENT_BALANCE        Result = 171
	TecINSUFFICIENT_PARENT_BALANCE Result = 172
	TecASSET_PAUSED                Result = 173
	TecNOT_OWNER                   Result = 174
	TecNOT_CREATOR                 Result = 175
	TecDIVISIBILITY_DISABLED       Result = 176
	TecBAD_STEP_SIZE               Result = 177
	TecINSUFFICIENT_WEIGHT         Result = 178
	TecNOT_A_DIVISION              Result = 179
	TecSHELL_DISABLED              Result = 180
	TecDIVISION_STARTED            Result = 181
	TecEXCEEDS_AVAILABLE_BALANCE   Result = 182
	TecBELOW_MIN_BUY               Result = 183
	TecAMOUNT_EXCEEDS_OFFER        Result = 184
	TecOFFER_EXHAUSTED_OR_CANCELED Result = 185
	TecOFFER_PAUSED                Result = 186
	TecMARKET_KIND                 Result = 187
	TecINSUFFICIENT_ALLOWANCE      Result = 188
	TecNO_PENDING_REQUEST          Result = 189
	TecROYALTY_CAP                 Result = 190

	// tef codes (-199 to -100): local failures
	TefFAILURE  Result = -199
	TefINTERNAL Result = -194

	// tem codes (-299 to -200): malformed transactions
	TemMALFORMED       Result = -299
	TemBAD_AMOUNT      Result = -298
	TemINVALID         Result = -277
	TemINVALID_FLAG    Result = -276
	TemREDUNDANT       Result = -275
	TemARRAY_EMPTY     Result = -253
	TemARRAY_TOO_LARGE Result = -252
	TemBAD_COUNT       Result = -240
	TemBAD_STEP_SIZE   Result = -239
	TemBELOW_MIN_BUY   Result = -238
	TemBAD_RATE        Result = -237
	TemBAD_PRICE       Result = -236
	TemBAD_DECIMALS    Result = -235
	TemBAD_NAME        Result = -234
	TemDST_IS_SRC      Result = -233
	TemBAD_ADDRESS     Result = -232
	TemUNKNOWN         Result = -231
)

var resultNames = map[Result]string{
	TesSUCCESS: "tesSUCCESS",

	TecNO_PERMISSION:               "tecNO_PERMISSION",
	TecNO_ENTRY:                    "tecNO_ENTRY",
	TecINTERNAL:                    "tecINTERNAL",
	TecHAS_OBLIGATIONS:             "tecHAS_OBLIGATIONS",
	TecINSUFFICIENT_FUNDS:          "tecINSUFFICIENT_FUNDS",
	TecNOT_APPROVED:                "tecNOT_APPROVED",
	TecINSUFFICIENT_BALANCE:        "tecINSUFFICIENT_BALANCE",
	TecINSUFFICIENT_PARENT_BALANCE: "tecINSUFFICIENT_PARENT_BALANCE",
	TecASSET_PAUSED:                "tecASSET_PAUSED",
	TecNOT_OWNER:                   "tecNOT_OWNER",
	TecNOT_CREATOR:                 "tecNOT_CREATOR",
	TecDIVISIBILITY_DISABLED:       "tecDIVISIBILITY_DISABLED",
	TecBAD_STEP_SIZE:               "tecBAD_STEP_SIZE",
	TecINSUFFICIENT_WEIGHT:         "tecINSUFFICIENT_WEIGHT",
	TecNOT_A_DIVISION:              "tecNOT_A_DIVISION",
	TecSHELL_DISABLED:              "tecSHELL_DISABLED",
	TecDIVISION_STARTED:            "tecDIVISION_STARTED",
	TecEXCEEDS_AVAILABLE_BALANCE:   "tecEXCEEDS_AVAILABLE_BALANCE",
	TecBELOW_MIN_BUY:               "tecBELOW_MIN_BUY",
	TecAMOUNT_EXCEEDS_OFFER:        "tecAMOUNT_EXCEEDS_OFFER",
	TecOFFER_EXHAUSTED_OR_CANCELED: "tecOFFER_EXHAUSTED_OR_CANCELED",
	TecOFFER_PAUSED:                "tecOFFER_PAUSED",
	TecMARKET_KIND:                 "tecMARKET_KIND",
	TecINSUFFICIENT_ALLOWANCE:      "tecINSUFFICIENT_ALLOWANCE",
	TecNO_PENDING_REQUEST:          "tecNO_PENDING_REQUEST",
	TecROYALTY_CAP:                 "tecROYALTY_CAP",

	TefFAILURE:  "tefFAILURE",
	TefINTERNAL: "tefINTERNAL",

	TemMALFORMED:       "temMALFORMED",
	TemBAD_AMOUNT:      "temBAD_AMOUNT",
	TemINVALID:         "temINVALID",
	TemINVALID_FLAG:    "temINVALID_FLAG",
	TemREDUNDANT:       "temREDUNDANT",
	TemARRAY_EMPTY:     "temARRAY_EMPTY",
	TemARRAY_TOO_LARGE: "temARRAY_TOO_LARGE",
	TemBAD_COUNT:       "temBAD_COUNT",
	TemBAD_STEP_SIZE:   "temBAD_STEP_SIZE",
	TemBELOW_MIN_BUY:   "temBELOW_MIN_BUY",
	TemBAD_RATE:        "temBAD_RATE",
	TemBAD_PRICE:       "temBAD_PRICE",
	TemBAD_DECIMALS:    "temBAD_DECIMALS",
	TemBAD_NAME:        "temBAD_NAME",
	TemDST_IS_SRC:      "temDST_IS_SRC",
	TemBAD_ADDRESS:     "temBAD_ADDRESS",
	TemUNKNOWN:         "temUNKNOWN",
}

var resultsByName = func() map[string]Result {
	m := make(map[string]Result, len(resultNames))
	for r, name := range resultNames {
		m[name] = r
	}
	return m
}()

// String returns the rippled-style token for the result
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", r)
}

// ResultFromString parses a result token such as "tecNOT_APPROVED"
func ResultFromString(name string) (Result, bool) {
	r, ok := resultsByName[name]
	return r, ok
}

// Error makes a non-success Result usable as an error value.
func (r Result) Error() string {
	return r.String() + ": " + r.Message()
}

// IsSuccess returns true if the result indicates success
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec (rejected against state) code
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (failure) code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem returns true if this is a tem (malformed) code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The transaction was applied."
	case TecNOT_APPROVED:
		return "Sender or receiver is not approved by the compliance registry."
	case TecINSUFFICIENT_BALANCE:
		return "Insufficient asset balance."
	case TecINSUFFICIENT_PARENT_BALANCE:
		return "Insufficient balance of the parent asset to back the child."
	case TecASSET_PAUSED:
		return "Asset is paused; only its creator may move it."
	case TecNOT_OWNER:
		return "Caller does not own the asset or offer."
	case TecNOT_CREATOR:
		return "Caller is not the asset creator."
	case TecDIVISIBILITY_DISABLED:
		return "Asset is not divisible."
	case TecBAD_STEP_SIZE:
		return "Step weight is not a multiple of the minimum step size."
	case TecINSUFFICIENT_WEIGHT:
		return "Not enough residual weight for the requested divisions."
	case TecNOT_A_DIVISION:
		return "Asset was not minted by a division."
	case TecSHELL_DISABLED:
		return "Asset has been joined back and is permanently disabled."
	case TecDIVISION_STARTED:
		return "Division parameters are frozen once division has started."
	case TecEXCEEDS_AVAILABLE_BALANCE:
		return "Amount exceeds the balance not already committed to offers."
	case TecBELOW_MIN_BUY:
		return "Buy amount is below the offer minimum."
	case TecAMOUNT_EXCEEDS_OFFER:
		return "Buy amount exceeds the remaining offer amount."
	case TecOFFER_EXHAUSTED_OR_CANCELED:
		return "Offer is filled or canceled."
	case TecOFFER_PAUSED:
		return "Offer is paused."
	case TecMARKET_KIND:
		return "Operation is not supported by this market kind."
	case TecINSUFFICIENT_FUNDS:
		return "Insufficient money balance."
	case TecINSUFFICIENT_ALLOWANCE:
		return "Money allowance to the spender is too small."
	case TecNO_PENDING_REQUEST:
		return "Buy request is not pending."
	case TecROYALTY_CAP:
		return "Royalty rate exceeds the ledger cap."
	case TecHAS_OBLIGATIONS:
		return "Offer has pending buy requests."
	case TecNO_ENTRY:
		return "No matching entry found."
	case TecNO_PERMISSION:
		return "No permission to perform requested operation."
	case TemBAD_AMOUNT:
		return "Amounts must be positive integers of base units."
	case TemBAD_COUNT:
		return "Division count must be positive."
	case TemBAD_STEP_SIZE:
		return "Step weight must be positive."
	case TemBELOW_MIN_BUY:
		return "Offer amount must be at least the positive minimum buy amount."
	case TemBAD_RATE:
		return "Rate out of range."
	case TemMALFORMED:
		return "Malformed transaction."
	case TemINVALID:
		return "The transaction is ill-formed."
	case TemINVALID_FLAG:
		return "Invalid flags."
	case TemARRAY_EMPTY:
		return "Array is empty."
	case TefINTERNAL:
		return "Internal error."
	default:
		return r.String()
	}
}
