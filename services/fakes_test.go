package services

import (
	"context"
	"sort"
	"time"

	"github.com/glaucius/back-to-the-loop/models"
	"github.com/glaucius/back-to-the-loop/repositories"
)

// The fakes below back the engine tests with plain in-memory state. The
// transactor runs the function directly; atomicity is the database's job and
// is not what these tests exercise.

type fakeTransactor struct{}

func (fakeTransactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeState struct {
	backyards   map[int]*models.Backyard
	loops       map[int]*models.Loop
	atletaLoops map[int]*models.AtletaLoop
	inscricoes  map[int]*models.Inscricao
	atletas     map[int]*models.Atleta
	nextID      int
}

func newFakeState() *fakeState {
	return &fakeState{
		backyards:   make(map[int]*models.Backyard),
		loops:       make(map[int]*models.Loop),
		atletaLoops: make(map[int]*models.AtletaLoop),
		inscricoes:  make(map[int]*models.Inscricao),
		atletas:     make(map[int]*models.Atleta),
		nextID:      1,
	}
}

func (s *fakeState) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *fakeState) addBackyard(b models.Backyard) *models.Backyard {
	b.ID = s.id()
	s.backyards[b.ID] = &b
	return &b
}

func (s *fakeState) addLoop(l models.Loop) *models.Loop {
	l.ID = s.id()
	if l.CriadoEm.IsZero() {
		l.CriadoEm = time.Now()
	}
	s.loops[l.ID] = &l
	return &l
}

func (s *fakeState) addAtletaLoop(al models.AtletaLoop) *models.AtletaLoop {
	al.ID = s.id()
	s.atletaLoops[al.ID] = &al
	return &al
}

func (s *fakeState) addInscricao(i models.Inscricao) *models.Inscricao {
	i.ID = s.id()
	if i.DataInscricao.IsZero() {
		i.DataInscricao = time.Now()
	}
	s.inscricoes[i.ID] = &i
	return &i
}

func (s *fakeState) addAtleta(a models.Atleta) *models.Atleta {
	a.ID = s.id()
	s.atletas[a.ID] = &a
	return &a
}

type fakeBackyardRepo struct{ s *fakeState }

func (r fakeBackyardRepo) Create(ctx context.Context, b *models.Backyard) error {
	b.ID = r.s.id()
	copied := *b
	r.s.backyards[b.ID] = &copied
	return nil
}

func (r fakeBackyardRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Backyard, error) {
	b, ok := r.s.backyards[id]
	if !ok {
		return nil, repositories.ErrBackyardNotFound
	}
	copied := *b
	return &copied, nil
}

func (r fakeBackyardRepo) List(ctx context.Context, filter repositories.ListBackyardsFilter) ([]models.Backyard, error) {
	var out []models.Backyard
	for _, b := range r.s.backyards {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeBackyardRepo) Update(ctx context.Context, b *models.Backyard) error {
	if _, ok := r.s.backyards[b.ID]; !ok {
		return repositories.ErrBackyardNotFound
	}
	copied := *b
	r.s.backyards[b.ID] = &copied
	return nil
}

func (r fakeBackyardRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.BackyardStatus) error {
	b, ok := r.s.backyards[id]
	if !ok {
		return repositories.ErrBackyardNotFound
	}
	b.Status = status
	return nil
}

func (r fakeBackyardRepo) UpdateImageKey(ctx context.Context, id int, column string, key *string) error {
	b, ok := r.s.backyards[id]
	if !ok {
		return repositories.ErrBackyardNotFound
	}
	switch column {
	case "profile_picture_key":
		b.ProfilePictureKey = key
	case "logo_key":
		b.LogoKey = key
	}
	return nil
}

func (r fakeBackyardRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.s.backyards[id]; !ok {
		return repositories.ErrBackyardNotFound
	}
	delete(r.s.backyards, id)
	return nil
}

type fakeLoopRepo struct{ s *fakeState }

func (r fakeLoopRepo) Create(ctx context.Context, exec repositories.SQLExecutor, loop *models.Loop) error {
	loop.ID = r.s.id()
	loop.CriadoEm = time.Now()
	copied := *loop
	r.s.loops[loop.ID] = &copied
	return nil
}

func (r fakeLoopRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Loop, error) {
	l, ok := r.s.loops[id]
	if !ok {
		return nil, repositories.ErrLoopNotFound
	}
	copied := *l
	return &copied, nil
}

func (r fakeLoopRepo) LockByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Loop, error) {
	return r.GetByID(ctx, exec, id)
}

func (r fakeLoopRepo) ListByBackyard(ctx context.Context, backyardID int) ([]models.Loop, error) {
	var out []models.Loop
	for _, l := range r.s.loops {
		if l.BackyardID == backyardID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NumeroLoop < out[j].NumeroLoop })
	return out, nil
}

func (r fakeLoopRepo) ListActive(ctx context.Context) ([]models.Loop, error) {
	var out []models.Loop
	for _, l := range r.s.loops {
		if l.Status == models.LoopStatusAtivo {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeLoopRepo) GetCurrent(ctx context.Context, exec repositories.SQLExecutor, backyardID int) (*models.Loop, error) {
	loops, _ := r.ListByBackyard(ctx, backyardID)
	var current *models.Loop
	for i := range loops {
		l := loops[i]
		if l.Status != models.LoopStatusFinalizado {
			return &l, nil
		}
		if current == nil || l.NumeroLoop > current.NumeroLoop {
			current = &l
		}
	}
	if current == nil {
		return nil, repositories.ErrLoopNotFound
	}
	return current, nil
}

func (r fakeLoopRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.LoopStatus, dataInicio, dataFim *time.Time) error {
	l, ok := r.s.loops[id]
	if !ok {
		return repositories.ErrLoopNotFound
	}
	l.Status = status
	if dataInicio != nil {
		l.DataInicio = dataInicio
	}
	if dataFim != nil {
		l.DataFim = dataFim
	}
	return nil
}

type fakeAtletaLoopRepo struct{ s *fakeState }

func (r fakeAtletaLoopRepo) Create(ctx context.Context, exec repositories.SQLExecutor, al *models.AtletaLoop) error {
	al.ID = r.s.id()
	copied := *al
	r.s.atletaLoops[al.ID] = &copied
	return nil
}

func (r fakeAtletaLoopRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.AtletaLoop, error) {
	al, ok := r.s.atletaLoops[id]
	if !ok {
		return nil, repositories.ErrAtletaLoopNotFound
	}
	copied := *al
	return &copied, nil
}

func (r fakeAtletaLoopRepo) ListByLoop(ctx context.Context, exec repositories.SQLExecutor, loopID int) ([]models.AtletaLoop, error) {
	var out []models.AtletaLoop
	for _, al := range r.s.atletaLoops {
		if al.LoopID == loopID {
			out = append(out, *al)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeAtletaLoopRepo) ListByLoopAndStatus(ctx context.Context, exec repositories.SQLExecutor, loopID int, status models.AtletaLoopStatus) ([]models.AtletaLoop, error) {
	all, _ := r.ListByLoop(ctx, exec, loopID)
	var out []models.AtletaLoop
	for _, al := range all {
		if al.Status == status {
			out = append(out, al)
		}
	}
	return out, nil
}

func (r fakeAtletaLoopRepo) CountByLoop(ctx context.Context, exec repositories.SQLExecutor, loopID int) (int, error) {
	all, _ := r.ListByLoop(ctx, exec, loopID)
	return len(all), nil
}

func (r fakeAtletaLoopRepo) Update(ctx context.Context, exec repositories.SQLExecutor, al *models.AtletaLoop) error {
	if _, ok := r.s.atletaLoops[al.ID]; !ok {
		return repositories.ErrAtletaLoopNotFound
	}
	copied := *al
	r.s.atletaLoops[al.ID] = &copied
	return nil
}

func (r fakeAtletaLoopRepo) MarkActiveAs(ctx context.Context, exec repositories.SQLExecutor, loopID int, status models.AtletaLoopStatus, tempoFim time.Time, observacoes *string) (int, error) {
	count := 0
	for _, al := range r.s.atletaLoops {
		if al.LoopID == loopID && al.Status == models.AtletaLoopStatusAtivo {
			al.Status = status
			fim := tempoFim
			al.TempoFim = &fim
			al.Observacoes = observacoes
			count++
		}
	}
	return count, nil
}

func (r fakeAtletaLoopRepo) PropagateStart(ctx context.Context, exec repositories.SQLExecutor, loopID int, tempoInicio time.Time) error {
	for _, al := range r.s.atletaLoops {
		if al.LoopID == loopID && al.Status == models.AtletaLoopStatusAtivo {
			inicio := tempoInicio
			al.TempoInicio = &inicio
		}
	}
	return nil
}

type fakeInscricaoRepo struct{ s *fakeState }

func (r fakeInscricaoRepo) Create(ctx context.Context, inscricao *models.Inscricao) error {
	for _, existing := range r.s.inscricoes {
		if existing.AtletaID == inscricao.AtletaID && existing.BackyardID == inscricao.BackyardID {
			return repositories.ErrInscricaoConflict
		}
	}
	inscricao.ID = r.s.id()
	inscricao.DataInscricao = time.Now()
	copied := *inscricao
	r.s.inscricoes[inscricao.ID] = &copied
	return nil
}

func (r fakeInscricaoRepo) GetByID(ctx context.Context, id int) (*models.Inscricao, error) {
	i, ok := r.s.inscricoes[id]
	if !ok {
		return nil, repositories.ErrInscricaoNotFound
	}
	copied := *i
	return &copied, nil
}

func (r fakeInscricaoRepo) FindByAtletaAndBackyard(ctx context.Context, atletaID, backyardID int) (*models.Inscricao, error) {
	for _, i := range r.s.inscricoes {
		if i.AtletaID == atletaID && i.BackyardID == backyardID {
			copied := *i
			return &copied, nil
		}
	}
	return nil, repositories.ErrInscricaoNotFound
}

func (r fakeInscricaoRepo) ListByBackyard(ctx context.Context, exec repositories.SQLExecutor, backyardID int) ([]models.Inscricao, error) {
	var out []models.Inscricao
	for _, i := range r.s.inscricoes {
		if i.BackyardID == backyardID {
			out = append(out, *i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r fakeInscricaoRepo) ListActiveByBackyard(ctx context.Context, exec repositories.SQLExecutor, backyardID int) ([]models.Inscricao, error) {
	all, _ := r.ListByBackyard(ctx, exec, backyardID)
	var out []models.Inscricao
	for _, i := range all {
		if i.StatusInscricao != models.InscricaoStatusCancelado {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r fakeInscricaoRepo) ListUnnumbered(ctx context.Context, exec repositories.SQLExecutor, backyardID int) ([]models.Inscricao, error) {
	all, _ := r.ListByBackyard(ctx, exec, backyardID)
	var out []models.Inscricao
	for _, i := range all {
		if i.NumeroPeito == nil && i.StatusInscricao != models.InscricaoStatusCancelado {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].DataInscricao.Before(out[b].DataInscricao) })
	return out, nil
}

func (r fakeInscricaoRepo) MaxNumeroPeito(ctx context.Context, exec repositories.SQLExecutor, backyardID int) (*int, error) {
	var max *int
	for _, i := range r.s.inscricoes {
		if i.BackyardID == backyardID && i.NumeroPeito != nil {
			if max == nil || *i.NumeroPeito > *max {
				v := *i.NumeroPeito
				max = &v
			}
		}
	}
	return max, nil
}

func (r fakeInscricaoRepo) CountByBackyard(ctx context.Context, backyardID int) (int, error) {
	all, _ := r.ListByBackyard(ctx, nil, backyardID)
	return len(all), nil
}

func (r fakeInscricaoRepo) UpdateNumeroPeito(ctx context.Context, exec repositories.SQLExecutor, id int, numero int) error {
	i, ok := r.s.inscricoes[id]
	if !ok {
		return repositories.ErrInscricaoNotFound
	}
	i.NumeroPeito = &numero
	return nil
}

func (r fakeInscricaoRepo) UpdateStatus(ctx context.Context, id int, status models.InscricaoStatus) error {
	i, ok := r.s.inscricoes[id]
	if !ok {
		return repositories.ErrInscricaoNotFound
	}
	i.StatusInscricao = status
	return nil
}

func (r fakeInscricaoRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.s.inscricoes[id]; !ok {
		return repositories.ErrInscricaoNotFound
	}
	delete(r.s.inscricoes, id)
	return nil
}

type fakeAtletaRepo struct{ s *fakeState }

func (r fakeAtletaRepo) Create(ctx context.Context, atleta *models.Atleta) error {
	for _, existing := range r.s.atletas {
		if existing.Email == atleta.Email {
			return repositories.ErrAtletaEmailConflict
		}
	}
	atleta.ID = r.s.id()
	copied := *atleta
	r.s.atletas[atleta.ID] = &copied
	return nil
}

func (r fakeAtletaRepo) GetByID(ctx context.Context, id int) (*models.Atleta, error) {
	a, ok := r.s.atletas[id]
	if !ok {
		return nil, repositories.ErrAtletaNotFound
	}
	copied := *a
	return &copied, nil
}

func (r fakeAtletaRepo) GetByEmail(ctx context.Context, email string) (*models.Atleta, error) {
	for _, a := range r.s.atletas {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repositories.ErrAtletaNotFound
}

func (r fakeAtletaRepo) ListByIDs(ctx context.Context, exec repositories.SQLExecutor, ids []int) ([]models.Atleta, error) {
	var out []models.Atleta
	for _, id := range ids {
		if a, ok := r.s.atletas[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r fakeAtletaRepo) Update(ctx context.Context, atleta *models.Atleta) error {
	if _, ok := r.s.atletas[atleta.ID]; !ok {
		return repositories.ErrAtletaNotFound
	}
	copied := *atleta
	r.s.atletas[atleta.ID] = &copied
	return nil
}

func (r fakeAtletaRepo) UpdateImagemPerfil(ctx context.Context, id int, key *string) error {
	a, ok := r.s.atletas[id]
	if !ok {
		return repositories.ErrAtletaNotFound
	}
	a.ImagemPerfil = key
	return nil
}
