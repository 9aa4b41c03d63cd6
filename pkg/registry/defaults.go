package registry

import (
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/executors/aigenerate"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/executors/dbwrite"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/executors/export"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/executors/httprequest"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/executors/log"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/executors/transform"
)

// RegisterDefaultExecutors registers all built-in node executors.
func (r *Registry) RegisterDefaultExecutors() {
	r.Register(httprequest.NodeType, httprequest.NewExecutor())
	r.Register(transform.NodeType, transform.NewExecutor())
	r.Register(aigenerate.NodeType, aigenerate.NewExecutor())
	r.Register(dbwrite.NodeType, dbwrite.NewExecutor())
	r.Register(export.NodeType, export.NewExecutor())
	r.Register(log.NodeType, log.NewExecutor())
}
