package fixgateway

import (
	"errors"

	"github.com/quickfixgo/quickfix"
)

func (s *FixGateway) AddRequestToMap(clOrdID string, sessionID *quickfix.SessionID) {
	s.requestMapping.Store(clOrdID, sessionID)
}

func (s *FixGateway) GetSessionByClOrdID(clOrdID string) (*quickfix.SessionID, error) {
	v, ok := s.requestMapping.Load(clOrdID)
	if !ok {
		return nil, errors.New("clOrdID not found")
	}

	return v.(*quickfix.SessionID), nil
}

func (s *FixGateway) DeleteRequestByClOrdID(clOrdID string) {
	s.requestMapping.Delete(clOrdID)
}
