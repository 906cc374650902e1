package event

import (
	"encoding/json"
	"fmt"
)

// LoanStatus discriminates the lifecycle stage of a loan.
type LoanStatus int32

const (
	StatusUnknown LoanStatus = iota
	StatusBorrowed
	StatusRepaid
	StatusLiquidated
)

func (s LoanStatus) String() string {
	switch s {
	case StatusBorrowed:
		return "borrowed"
	case StatusRepaid:
		return "repaid"
	case StatusLiquidated:
		return "liquidated"
	default:
		return "unknown"
	}
}

// ParseLoanStatus converts the wire string into a LoanStatus.
func ParseLoanStatus(s string) (LoanStatus, error) {
	switch s {
	case "borrowed":
		return StatusBorrowed, nil
	case "repaid":
		return StatusRepaid, nil
	case "liquidated":
		return StatusLiquidated, nil
	default:
		return StatusUnknown, fmt.Errorf("unknown loan status %q", s)
	}
}

func (s LoanStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *LoanStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseLoanStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
