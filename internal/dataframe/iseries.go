package dataframe

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/paveg/lframe/internal/index"
)

// ISeries provides a type-erased interface for Series of any type
type ISeries interface {
	Len() int
	Index() *index.Index
	DataType() arrow.DataType
	String() string
	Array() arrow.Array
	Retain()
	Release()
}
