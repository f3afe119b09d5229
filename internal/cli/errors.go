package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/vgreport/internal/contract"
	"github.com/roach88/vgreport/internal/store"
)

// Error codes for CLI responses.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeNotFound       = "E005" // Path or record not found
	ErrCodeEnvironment    = "E010" // Data directory or database file unusable
	ErrCodeSchema         = "E011" // Schema creation or column migration failed
	ErrCodeQuery          = "E012" // Statement failed
	ErrCodeData           = "E013" // Invalid input or malformed stored data
	ErrCodeInvalidPayload = "E020" // Payload rejected by the contract
	ErrCodeInvalidArgs    = "E021" // Argument could not be parsed
	ErrCodeRowsRejected   = "E022" // Some import rows were rejected
	ErrCodeScenarioFailed = "E030" // One or more scenarios failed
)

// classify maps an error to a response code and exit code.
func classify(err error) (code string, exit int) {
	var contractErr *contract.Error
	if errors.As(err, &contractErr) {
		return ErrCodeInvalidPayload, ExitCommandError
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		switch storeErr.Kind {
		case store.KindEnvironment:
			return ErrCodeEnvironment, ExitCommandError
		case store.KindSchema:
			return ErrCodeSchema, ExitFailure
		case store.KindQuery:
			return ErrCodeQuery, ExitFailure
		case store.KindData:
			return ErrCodeData, ExitFailure
		}
	}

	return ErrCodeGeneric, ExitFailure
}

// fail reports err through the formatter and returns the matching ExitError.
// The message is the single human-readable line the caller sees.
func fail(f *OutputFormatter, op string, err error) error {
	code, exit := classify(err)
	return failWith(f, code, exit, fmt.Sprintf("%s: %v", op, err))
}

// failWith reports a message with an explicit code and exit code.
func failWith(f *OutputFormatter, code string, exit int, message string) error {
	_ = f.Error(code, message, nil)
	return &ExitError{Code: exit, Message: message, Reported: true}
}
