package mocks

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

type Transferer struct {
	mock.Mock
}

func (t *Transferer) Transfer(
	arg1 context.Context, arg2, arg3 common.Address, arg4 *big.Int,
) (string, error) {
	args := t.Called(arg1, arg2, arg3, arg4)
	return args.String(0), args.Error(1)
}
