// Package cfg configures the engine with compiled mappings.
//
// A Configuration is built fluently: database settings become engine
// properties, mappings are compiled and registered as hibernate-mapping
// documents, and user callbacks can inspect or alter the result:
//
//	c, err := cfg.Fluently().
//	    Database(dialect.ForPostgres(dsn)).
//	    Mappings(func(m *cfg.MappingConfiguration) {
//	        m.FluentMappings().Add(customerMap, orderMap).ExportTo("mappings")
//	        m.AutoMappings().Add(schema.AutoMap(src))
//	    }).
//	    CacheTo(".fluentmap/config.msgpack").
//	    BuildConfiguration(ctx)
package cfg
