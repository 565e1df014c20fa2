package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	d := NoopDecomposeHooks{}
	d.OnDecomposeStart(ctx, 100, 120)
	d.OnDecomposeComplete(ctx, 21, time.Second, nil)

	r := NoopRoutingHooks{}
	r.OnRouteStart(ctx, 2)
	r.OnRouteComplete(ctx, true, 3, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "cells")
	c.OnCacheMiss(ctx, "route")
	c.OnCacheSet(ctx, "cells", 1024)

	s := NoopServerHooks{}
	s.OnRequest(ctx, "POST", "/v1/route")
	s.OnResponse(ctx, "POST", "/v1/route", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Decompose().(NoopDecomposeHooks); !ok {
		t.Error("Decompose() should return NoopDecomposeHooks by default")
	}
	if _, ok := Routing().(NoopRoutingHooks); !ok {
		t.Error("Routing() should return NoopRoutingHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	customDecompose := &testDecomposeHooks{}
	SetDecomposeHooks(customDecompose)
	if Decompose() != customDecompose {
		t.Error("SetDecomposeHooks should set custom hooks")
	}

	customRouting := &testRoutingHooks{}
	SetRoutingHooks(customRouting)
	if Routing() != customRouting {
		t.Error("SetRoutingHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customServer := &testServerHooks{}
	SetServerHooks(customServer)
	if Server() != customServer {
		t.Error("SetServerHooks should set custom hooks")
	}

	Reset()
	if _, ok := Routing().(NoopRoutingHooks); !ok {
		t.Error("Reset() should restore NoopRoutingHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testRoutingHooks{}
	SetRoutingHooks(custom)
	SetRoutingHooks(nil)

	if Routing() != custom {
		t.Error("SetRoutingHooks(nil) should be ignored")
	}
}

type testDecomposeHooks struct{ NoopDecomposeHooks }
type testRoutingHooks struct{ NoopRoutingHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testServerHooks struct{ NoopServerHooks }
