// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New("test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)
	assert.Equal(t, Precondition, revert.Kind())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func Test_RevertKinds(t *testing.T) {
	unauth := NewUnauthorized("caller must be the verifier")
	assert.True(t, IsRevertErr(unauth))
	assert.True(t, IsUnauthorized(unauth))
	assert.False(t, IsInvariant(unauth))

	inv := NewInvariant("factor already set")
	assert.True(t, IsInvariant(inv))
	assert.Equal(t, "invariant", inv.Kind().String())

	wrapped := errors.Wrap(Newf("amount %d too low", 0), "bond")
	assert.True(t, IsRevertErr(wrapped))
	assert.False(t, IsUnauthorized(wrapped))
	assert.Equal(t, "bond: amount 0 too low", wrapped.Error())
}
