// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies why a call was rejected.
type Kind uint8

const (
	// Precondition rejects a call whose arguments or state do not allow it.
	Precondition Kind = iota
	// Unauthorized rejects a privileged call from the wrong caller.
	Unauthorized
	// Invariant reports a broken internal invariant. It is never expected in practice.
	Invariant
)

func (k Kind) String() string {
	switch k {
	case Precondition:
		return "precondition"
	case Unauthorized:
		return "unauthorized"
	case Invariant:
		return "invariant"
	default:
		return "unknown"
	}
}

type ErrRevert struct {
	kind    Kind
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		kind:    Precondition,
		message: message,
	}
}

func Newf(format string, args ...any) *ErrRevert {
	return New(fmt.Sprintf(format, args...))
}

func NewUnauthorized(message string) *ErrRevert {
	return &ErrRevert{kind: Unauthorized, message: message}
}

func NewInvariant(message string) *ErrRevert {
	return &ErrRevert{kind: Invariant, message: message}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func IsRevertErr(err any) bool {
	_, ok := asRevert(err)
	return ok
}

func IsUnauthorized(err any) bool {
	e, ok := asRevert(err)
	return ok && e.kind == Unauthorized
}

func IsInvariant(err any) bool {
	e, ok := asRevert(err)
	return ok && e.kind == Invariant
}

func asRevert(err any) (*ErrRevert, bool) {
	if err == nil {
		return nil, false
	}
	e, ok := err.(error)
	if !ok {
		return nil, false
	}
	var ve *ErrRevert
	if errors.As(e, &ve) {
		return ve, true
	}
	return nil, false
}
