package validator

import (
	"github.com/SAP-F-2025/diagnosis-service/internal/errors"
)

// ValidationErrors is what Validate returns for rejected request fields.
type ValidationErrors = errors.ValidationErrors
