package xfile_test

import (
	"errors"
	"fmt"

	"github.com/omeyang/xfilekit/pkg/util/xfile"
)

func ExampleResolve() {
	p, err := xfile.Resolve("/data", "u1/report.pdf")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(p.Abs())
	fmt.Println(p.Rel())
	// Output:
	// /data/u1/report.pdf
	// u1/report.pdf
}

func ExampleResolve_traversal() {
	_, err := xfile.Resolve("/data", `a\..\..\etc`)
	fmt.Println(errors.Is(err, xfile.ErrPathTraversal))
	fmt.Println(xfile.KindOf(err))
	// Output:
	// true
	// traversal
}

func ExampleResolveJoin() {
	p, err := xfile.ResolveJoin("/data", "u1/docs", "a.txt")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	gz, _ := p.WithSuffix(".gz")
	fmt.Println(gz)
	// Output: /data/u1/docs/a.txt.gz
}

func ExampleWithin() {
	fmt.Println(xfile.Within("/data", "/data/x"))
	fmt.Println(xfile.Within("/data", "/data-evil/x"))
	// Output:
	// true
	// false
}
