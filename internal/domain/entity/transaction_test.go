package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_DesdePending(t *testing.T) {
	venta := &Transaction{Status: TransactionPending}

	assert.True(t, venta.CanTransition(TransactionCompleted))
	assert.True(t, venta.CanTransition(TransactionCancelled))
	assert.True(t, venta.CanTransition(TransactionExpired))
	assert.False(t, venta.CanTransition(TransactionPending))
	assert.False(t, venta.CanTransition(TransactionRefunded))
}

func TestCanTransition_LosEstadosTerminalesNoTransicionan(t *testing.T) {
	for _, estado := range []string{
		TransactionCompleted,
		TransactionCancelled,
		TransactionExpired,
		TransactionRefunded,
	} {
		venta := &Transaction{Status: estado}
		assert.False(t, venta.CanTransition(TransactionCompleted), estado)
		assert.False(t, venta.CanTransition(TransactionCancelled), estado)
		assert.False(t, venta.CanTransition(TransactionExpired), estado)
	}
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod(PaymentCash))
	assert.True(t, ValidPaymentMethod(PaymentCard))
	assert.True(t, ValidPaymentMethod(PaymentTransfer))
	assert.True(t, ValidPaymentMethod(PaymentQR))
	assert.False(t, ValidPaymentMethod("CHEQUE"))
	assert.False(t, ValidPaymentMethod(""))
}
