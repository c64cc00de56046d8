package axi

import "fmt"

// Resp is the 2-bit response status.
type Resp uint8

// Response codes.
const (
	OK          Resp = 0b00
	ExclusiveOK Resp = 0b01
	TargetError Resp = 0b10
	DecodeError Resp = 0b11
)

func (r Resp) String() string {
	switch r {
	case OK:
		return "OK"
	case ExclusiveOK:
		return "EXCLUSIVE_OK"
	case TargetError:
		return "TARGET_ERROR"
	case DecodeError:
		return "DECODE_ERROR"
	default:
		return fmt.Sprintf("Resp(%d)", uint8(r))
	}
}

// IsError tells if the response reports a failure.
func (r Resp) IsError() bool {
	return r == TargetError || r == DecodeError
}

func (r Resp) severity() int {
	switch r {
	case DecodeError:
		return 3
	case TargetError:
		return 2
	case OK:
		return 1
	case ExclusiveOK:
		return 0
	default:
		panic(fmt.Sprintf("invalid response code %d", uint8(r)))
	}
}

// CombineResp merges two response codes. The more severe code wins, with
// DECODE_ERROR > TARGET_ERROR > OK > EXCLUSIVE_OK. A plain OK beats
// EXCLUSIVE_OK because any other outcome voids the exclusive access.
func CombineResp(a, b Resp) Resp {
	if a.severity() >= b.severity() {
		return a
	}

	return b
}

// CombineAll folds any number of response codes. It returns EXCLUSIVE_OK, the
// identity of CombineResp, when no code is given.
func CombineAll(resps ...Resp) Resp {
	result := ExclusiveOK

	for _, r := range resps {
		result = CombineResp(result, r)
	}

	return result
}
