package kernel

import "github.com/google/uuid"

// AccountID identifies a user account. Values are UUID strings.
type AccountID string

func NewAccountID() AccountID { return AccountID(uuid.NewString()) }
func (a AccountID) String() string { return string(a) }
func (a AccountID) IsEmpty() bool  { return string(a) == "" }

// NewRequestID returns a fresh request id.
func NewRequestID() string { return uuid.NewString() }
