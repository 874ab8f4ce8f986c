// Package model builds models: named sets of interface calls that are
// queued by method and sent by one of four combinators.
//
//	m, err := rt.Build([]string{"Search.list", "Cart.get"})
//	results, err := m.Call("list", dispatch.Params{"q": "shoes"}).
//		Call("get", nil).
//		All(ctx)
//
// First and Then send only the first queued call. All sends every call
// concurrently and fails on the first failure. Paral sends every call
// concurrently and never fails. Series sends calls one at a time, feeding
// each result to the next call's ParamsFunc.
//
// Every combinator drains the queue and the cookie set by WithCookie, so a
// queue is sent at most once.
package model
