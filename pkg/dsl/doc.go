/*
Package dsl provides a fluent builder for constructing flow definitions
in Go code, as an alternative to loading them from YAML files.

The builder validates the resulting graph exactly like domain.NewFlow,
so a mistyped step id or an unconditional cycle fails at Build time
rather than at navigation time.

Example:

	def, err := dsl.New("checkout").
		Add("cart").
		Schema(schema.Schema{"items": schema.Slice(schema.String())}).
		Go("shipping").
		Add("shipping").
		Schema(shippingSchema).
		Next(func(stepData any, all domain.Data) domain.StepID {
			if needsCustoms(stepData) {
				return "customs"
			}
			return "payment"
		}).
		Add("customs").Schema(customsSchema).Go("payment").
		Add("payment").Schema(paymentSchema).End().
		Build()
*/
package dsl
