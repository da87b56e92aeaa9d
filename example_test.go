package lframe_test

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/lframe"
)

func ExampleNewSeries() {
	mem := memory.NewGoAllocator()
	users := lframe.NewIndex([]string{"user 1", "user 2", "user 3", "user 4"}, "names")

	salaries, err := lframe.NewSeries([]int64{20000, 300000, 20000, 50000}, users, mem)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer salaries.Release()

	fmt.Println(salaries)
	total, _ := salaries.Sum()
	fmt.Println(total)
	// Output:
	// user 1	20000
	// user 2	300000
	// user 3	20000
	// user 4	50000
	// 390000
}

func ExampleReadCSV() {
	mem := memory.NewGoAllocator()
	text := `,names,salary
user 1,Lukas Novak,20000
user 2,Petr Pavel,300000`

	df, err := lframe.ReadCSV(text, mem)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer df.Release()

	salary, _ := lframe.Typed[string](df, lframe.Str("salary"))
	parsed, err := lframe.TryApply(salary, lframe.ParseInt)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer parsed.Release()

	best, _ := parsed.Max()
	fmt.Println(df)
	fmt.Println(df.Columns())
	fmt.Println(best)
	// Output:
	// DataFrame(2, 2)
	// Index(["names", "salary"])
	// 300000
}
