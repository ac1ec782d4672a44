package utils

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

var node *snowflake.Node

func init() {
	n, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	node = n
}

// WaybillNumber mints a globally unique waybill number. Snowflake IDs
// keep numbers unique across instances without a database round trip.
func WaybillNumber() string {
	return fmt.Sprintf("WB-%s", node.Generate())
}
