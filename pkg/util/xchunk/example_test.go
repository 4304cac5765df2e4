package xchunk_test

import (
	"context"
	"fmt"
	"os"

	"github.com/omeyang/xfilekit/pkg/util/xchunk"
	"github.com/omeyang/xfilekit/pkg/util/xfile"
)

func ExampleWrite() {
	root, _ := os.MkdirTemp("", "xchunk-example")
	defer os.RemoveAll(root)

	dst, err := xfile.ResolveJoin(root, "u1", "hello.txt")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	res, err := xchunk.Write(context.Background(), dst, "SGVsbG8g\nV29ybGQh")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	data, _ := os.ReadFile(dst.Abs())
	fmt.Println(res.BytesWritten, string(data))
	// Output: 12 Hello World!
}
