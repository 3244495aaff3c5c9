package testutil

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

func Expect(err error, message string) {
	if err != nil {
		panic(fmt.Sprintf(message+" Error : %s", err))
	}
}

func WaitForPredicateToBeTrue(predicate func() bool) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if predicate() {
				return true
			}
		}
	}
}

// GetFreePort asks the kernel for a free open port that is ready to use.
func GetFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	// released again so the server under test can bind it
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func WaitForServiceUp(port int) {
	if !WaitForPredicateToBeTrue(func() bool {
		resp, err := http.Get("http://localhost:" + strconv.Itoa(port) + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}) {
		panic("failed to start service on port " + strconv.Itoa(port))
	}
}
