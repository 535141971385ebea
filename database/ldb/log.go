package ldb

import "github.com/chainforge/chainforge/logger"

var log = logger.RegisterSubSystem("LVDB")
