package partners

import (
	"errors"
	"strings"
)

func (s *Service) validate(cp Counterparty) error {
	if strings.TrimSpace(cp.Code) == "" {
		return errors.New("counterparty code is required")
	}
	if strings.TrimSpace(cp.Name) == "" {
		return errors.New("counterparty name is required")
	}
	return nil
}
