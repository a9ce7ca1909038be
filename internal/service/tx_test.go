package service

import "context"

type testTxRepos struct {
	chunks     ChunkStore
	documents  DocumentStore
	ingestJobs IngestJobStore
}

func (t *testTxRepos) Chunks() ChunkStore {
	return t.chunks
}

func (t *testTxRepos) Documents() DocumentStore {
	return t.documents
}

func (t *testTxRepos) IngestJobs() IngestJobStore {
	return t.ingestJobs
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	return fn(t.repos)
}
