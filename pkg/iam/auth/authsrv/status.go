package authsrv

import (
	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/ptrx"
)

// StatusView is the session introspection body. All fields are null
// without a session.
type StatusView struct {
	AuthToken    *string `json:"auth_token"`
	RefreshToken *string `json:"refresh_token"`
	CSRFToken    *string `json:"csrf_token"`
}

// StatusService reports the caller's current session. It never writes.
type StatusService struct {
	signer auth.TokenSigner
}

func NewStatusService(signer auth.TokenSigner) *StatusService {
	return &StatusService{signer: signer}
}

func (s *StatusService) Status(session *auth.Session) (*StatusView, error) {
	if session == nil || session.Claims == nil {
		return &StatusView{}, nil
	}

	token, err := s.signer.Encode(session.Claims)
	if err != nil {
		return nil, errx.Wrap(err, "failed to encode session claims", errx.TypeInternal)
	}

	return &StatusView{
		AuthToken:    ptrx.String(token),
		RefreshToken: session.RefreshToken,
		CSRFToken:    ptrx.String(session.Claims.CSRFToken),
	}, nil
}
