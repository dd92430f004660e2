// Package numreach is an embeddable client for the numreach puzzle solver.
//
// A puzzle is a handful of numbers and a target. The solver combines the
// numbers with arithmetic (and, at higher levels, powers, roots, factorials
// and summations) until it finds expressions equal to the target. When none
// exists it reports the closest integer it reached.
//
// # In-process
//
//	client, _ := numreach.New(ctx)
//	res, _ := client.Solve(ctx, numreach.Puzzle{Numbers: []float64{2, 3, 7}, Target: 23})
//	for _, s := range res.Solutions {
//	    fmt.Println(s.Expression, s.Complexity)
//	}
//
// # With a shared result cache
//
//	client, _ := numreach.New(ctx,
//	    numreach.WithValkey("localhost:6379", ""),
//	    numreach.WithStepLimit(50_000),
//	)
//	defer client.Close()
//
// A step limit makes results reproducible across machines, which is what you
// want when several processes share one cache.
package numreach
