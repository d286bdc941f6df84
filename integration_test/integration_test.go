// +build integration

// Package integration_test drives a live nullcached server over the
// wire with a real RESP client, the same end-to-end shape as the
// teacher's own integration_test package, but against go-redis rather
// than a bespoke client since this tree has no client package of its
// own to exercise.
package integration_test

import (
	"testing"
	"time"

	"github.com/go-redis/redis"

	"github.com/nullcache/nullcache/core"
	"github.com/nullcache/nullcache/internal/log"
	"github.com/nullcache/nullcache/server"
)

const testPort = 16479

var client *redis.Client

func TestMain(m *testing.M) {
	log.SetLevel(-1)

	store := core.New()
	dispatcher := server.NewDispatcher(store)
	srv := server.New("localhost", testPort, dispatcher)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			panic("nullcached failed to start: " + err.Error())
		}
	}()
	time.Sleep(200 * time.Millisecond) // wait for the listener to come up

	client = redis.NewClient(&redis.Options{Addr: "localhost:16479"})
	defer client.Close()

	m.Run()
}

func TestIntegration_StringRoundTrip(t *testing.T) {
	if err := client.Set("greeting", "hello", 0).Err(); err != nil {
		t.Fatalf("SET: %s", err)
	}

	got, err := client.Get("greeting").Result()
	if err != nil {
		t.Fatalf("GET: %s", err)
	}
	if got != "hello" {
		t.Errorf("GET greeting = %q, want hello", got)
	}

	if err := client.Get("missing").Err(); err != redis.Nil {
		t.Errorf("GET missing err = %v, want redis.Nil", err)
	}
}

func TestIntegration_ListOrderAndAutoDelete(t *testing.T) {
	client.Del("mylist")

	if _, err := client.RPush("mylist", "a", "b", "c").Result(); err != nil {
		t.Fatalf("RPUSH: %s", err)
	}
	if _, err := client.LPush("mylist", "z").Result(); err != nil {
		t.Fatalf("LPUSH: %s", err)
	}

	got, err := client.LRange("mylist", 0, -1).Result()
	if err != nil {
		t.Fatalf("LRANGE: %s", err)
	}
	want := []string{"z", "a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("LRANGE = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LRANGE = %v, want %v", got, want)
		}
	}

	if _, err := client.LPop("mylist").Result(); err != nil {
		t.Fatalf("LPOP: %s", err)
	}
	for i := 0; i < 3; i++ {
		client.LPop("mylist")
	}

	if n, err := client.Exists("mylist").Result(); err != nil || n != 0 {
		t.Errorf("EXISTS mylist after draining = (%d, %v), want (0, nil)", n, err)
	}
}

func TestIntegration_HashRoundTrip(t *testing.T) {
	client.Del("myhash")

	client.HSet("myhash", "f1", "v1")
	client.HSet("myhash", "f2", "v2")

	got, err := client.HGetAll("myhash").Result()
	if err != nil {
		t.Fatalf("HGETALL: %s", err)
	}
	if got["f1"] != "v1" || got["f2"] != "v2" {
		t.Errorf("HGETALL = %v, want map[f1:v1 f2:v2]", got)
	}
}

func TestIntegration_ExpirationLaziness(t *testing.T) {
	client.Set("transient", "value", 100*time.Millisecond)
	time.Sleep(200 * time.Millisecond)

	if err := client.Get("transient").Err(); err != redis.Nil {
		t.Errorf("GET transient after TTL elapsed err = %v, want redis.Nil", err)
	}
	if n, _ := client.Exists("transient").Result(); n != 0 {
		t.Errorf("EXISTS transient after TTL elapsed = %d, want 0", n)
	}
}

func TestIntegration_WrongType(t *testing.T) {
	client.Del("wrongtype")
	client.LPush("wrongtype", "a")

	if err := client.Get("wrongtype").Err(); err == nil || err == redis.Nil {
		t.Errorf("GET on a list key err = %v, want a type-mismatch error", err)
	}
}
