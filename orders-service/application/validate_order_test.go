package application

import (
	"testing"

	"github.com/draftea/order-system/orders-service/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int {
	return &v
}

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func validCreateOrderCommand() *CreateOrderCommand {
	return &CreateOrderCommand{
		OrderID:    "550e8400-e29b-41d4-a716-446655440000",
		CustomerID: "customer-1",
		CardNumber: "4111111111111111",
		Items: []OrderItemCommand{
			{SKU: "SKU001", Quantity: intPtr(2)},
			{SKU: "SKU002", Quantity: intPtr(1)},
		},
	}
}

func TestMandatoryFieldsValidation_Validate(t *testing.T) {
	tests := []struct {
		name          string
		command       func() *CreateOrderCommand
		expectedError string
	}{
		{
			name:    "valid order",
			command: validCreateOrderCommand,
		},
		{
			name:          "nil order",
			command:       func() *CreateOrderCommand { return nil },
			expectedError: "Order cannot be null",
		},
		{
			name: "missing order ID",
			command: func() *CreateOrderCommand {
				cmd := validCreateOrderCommand()
				cmd.OrderID = ""
				return cmd
			},
			expectedError: "Order ID cannot be null",
		},
		{
			name: "nil items",
			command: func() *CreateOrderCommand {
				cmd := validCreateOrderCommand()
				cmd.Items = nil
				return cmd
			},
			expectedError: "Order items cannot be null or empty",
		},
		{
			name: "empty items",
			command: func() *CreateOrderCommand {
				cmd := validCreateOrderCommand()
				cmd.Items = []OrderItemCommand{}
				return cmd
			},
			expectedError: "Order items cannot be null or empty",
		},
		{
			name: "blank SKU",
			command: func() *CreateOrderCommand {
				cmd := validCreateOrderCommand()
				cmd.Items[1].SKU = "   "
				return cmd
			},
			expectedError: "Order items must have a valid SKU",
		},
		{
			name: "nil quantity",
			command: func() *CreateOrderCommand {
				cmd := validCreateOrderCommand()
				cmd.Items[0].Quantity = nil
				return cmd
			},
			expectedError: "Order items must have a valid quantity",
		},
		{
			name: "missing customer ID",
			command: func() *CreateOrderCommand {
				cmd := validCreateOrderCommand()
				cmd.CustomerID = ""
				return cmd
			},
			expectedError: "Customer ID cannot be null",
		},
		{
			name: "blank card number",
			command: func() *CreateOrderCommand {
				cmd := validCreateOrderCommand()
				cmd.CardNumber = " "
				return cmd
			},
			expectedError: "Card number cannot be empty",
		},
		{
			name: "blank SKU wins over nil quantity on a later item",
			command: func() *CreateOrderCommand {
				cmd := validCreateOrderCommand()
				cmd.Items[0].Quantity = nil
				cmd.Items[1].SKU = ""
				return cmd
			},
			expectedError: "Order items must have a valid SKU",
		},
		{
			name: "negative quantity is not checked",
			command: func() *CreateOrderCommand {
				cmd := validCreateOrderCommand()
				cmd.Items[0].Quantity = intPtr(-3)
				return cmd
			},
		},
	}

	validator := NewOrderValidator(MandatoryFieldsValidation{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.command())

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err.Error())
				assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type rejectAllValidation struct {
	called *int
}

func (v rejectAllValidation) Validate(*CreateOrderCommand) error {
	*v.called++
	return domain.NewValidationError("rejected")
}

func TestOrderValidator_StopsAtFirstFailure(t *testing.T) {
	first, second := 0, 0
	validator := NewOrderValidator(rejectAllValidation{called: &first}, rejectAllValidation{called: &second})

	err := validator.Validate(validCreateOrderCommand())

	assert.EqualError(t, err, "rejected")
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
}

func TestCreateOrderCommand_toItems(t *testing.T) {
	cmd := validCreateOrderCommand()

	items := cmd.toItems()

	assert.Len(t, items, 2)
	assert.Equal(t, "SKU001", items[0].SKU)
	assert.Equal(t, 2, *items[0].Quantity)
	assert.Nil(t, items[0].Price)
	assert.Empty(t, items[0].ID)
}
