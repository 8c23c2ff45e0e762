package formpath_test

import (
	"context"
	"fmt"

	"github.com/nmbl-labs/formpath"
	"github.com/nmbl-labs/formpath/pkg/dsl"
	"github.com/nmbl-labs/formpath/pkg/schema"
)

// Example walks a two-step flow built with the fluent DSL.
func Example() {
	def, err := dsl.New("contact").
		Add("name").Schema(schema.Schema{"name": schema.String()}).Go("message").
		Add("message").Schema(schema.Schema{"body": schema.String()}).End().
		Build()
	if err != nil {
		fmt.Println(err)
		return
	}

	flow, err := formpath.New(def)
	if err != nil {
		fmt.Println(err)
		return
	}

	ctx := context.Background()
	if _, err := flow.Next(ctx, map[string]any{"name": "Ada"}); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(flow.State().CurrentStep)

	if _, err := flow.Next(ctx, map[string]any{"body": "hello"}); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(flow.IsComplete())

	// Output:
	// message
	// true
}
