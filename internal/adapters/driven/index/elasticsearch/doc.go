// Package elasticsearch implements driven.SearchIndex over an
// Elasticsearch cluster using the official go-elasticsearch client.
//
// The index holds one document per source file, keyed by the file's
// stable id. The content field is mapped as keyword so that substring
// search runs as a wildcard query against the whole value:
//
//	{"filename": text, "content": keyword, "sourceId": text}
//
// Keyword terms are capped by Lucene at 32766 bytes; larger documents are
// rejected by the cluster and surface as domain.ErrIndexWrite.
package elasticsearch
