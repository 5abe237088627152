package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "yisu_backoffice/internal/adapters/redis"
)

func TestTokenStore_RoundTripAndClear(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.NewClient(mr.Addr(), "", 0)
	s := redisad.NewTokenStore(c, "ops")
	ctx := context.Background()

	tok, err := s.Load(ctx)
	if err != nil || tok != "" {
		t.Fatalf("empty store: tok=%q err=%v", tok, err)
	}
	if err := s.Save(ctx, "abc.def.ghi"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, _ := mr.Get("yisu_token:ops"); got != "abc.def.ghi" {
		t.Fatalf("unexpected stored value %q", got)
	}
	if tok, _ := s.Load(ctx); tok != "abc.def.ghi" {
		t.Fatalf("load: got %q", tok)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists("yisu_token:ops") {
		t.Fatalf("key should be gone after clear")
	}
}

func TestCache_SetGetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(redisad.NewClient(mr.Addr(), "", 0))
	ctx := context.Background()

	type row struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	var out row
	if ok, err := cache.Get(ctx, "hotel:1", &out); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if err := cache.Set(ctx, "hotel:1", row{ID: 1, Name: "上海陆家嘴禧玥酒店"}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ok, err := cache.Get(ctx, "hotel:1", &out); !ok || err != nil {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if out.ID != 1 || out.Name != "上海陆家嘴禧玥酒店" {
		t.Fatalf("unexpected value: %+v", out)
	}
	if ttl := mr.TTL("yisu:hotel:1"); ttl <= 0 {
		t.Fatalf("expected a ttl, got %v", ttl)
	}
	if err := cache.Del(ctx, "hotel:1"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := cache.Get(ctx, "hotel:1", &out); ok {
		t.Fatalf("expected miss after del")
	}
}

func TestCache_CorruptEntryIsAMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(redisad.NewClient(mr.Addr(), "", 0))
	if err := mr.Set("yisu:hotel:2", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var out struct{ ID int64 }
	ok, err := cache.Get(context.Background(), "hotel:2", &out)
	if ok || err != nil {
		t.Fatalf("expected a clean miss, ok=%v err=%v", ok, err)
	}
	if mr.Exists("yisu:hotel:2") {
		t.Fatalf("corrupt entry should be removed")
	}
}
