package main

import (
	"github.com/sells-group/charity-prospector/internal/pipeline"
	"github.com/sells-group/charity-prospector/internal/propublica"
	"github.com/sells-group/charity-prospector/internal/store"
	"github.com/sells-group/charity-prospector/pkg/apollo"
)

// initPipeline wires the API clients against the store-backed response cache.
// Apollo stays nil without a key, which disables enrichment.
func initPipeline(st store.Store, obs pipeline.Observer) *pipeline.Pipeline {
	opts := []propublica.Option{
		propublica.WithCache(store.NewResponseCache(st), cfg.ProPublica.CacheTTL()),
		propublica.WithRequestDelay(cfg.ProPublica.RequestDelay()),
	}
	if cfg.ProPublica.BaseURL != "" {
		opts = append(opts, propublica.WithBaseURL(cfg.ProPublica.BaseURL))
	}
	if cfg.ProPublica.XMLBaseURL != "" {
		opts = append(opts, propublica.WithXMLBaseURL(cfg.ProPublica.XMLBaseURL))
	}
	client := propublica.NewClient(opts...)

	var enricher apollo.Client
	if cfg.Apollo.Key != "" {
		apolloOpts := []apollo.Option{}
		if cfg.Apollo.BaseURL != "" {
			apolloOpts = append(apolloOpts, apollo.WithBaseURL(cfg.Apollo.BaseURL))
		}
		enricher = apollo.NewClient(cfg.Apollo.Key, apolloOpts...)
	}

	return pipeline.New(client, enricher, obs)
}
