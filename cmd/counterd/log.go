// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/chainforge/chainforge/logger"
	"github.com/chainforge/chainforge/util/panics"
)

var (
	log   = logger.RegisterSubSystem("CTRD")
	spawn = panics.GoroutineWrapperFunc(log)
)
