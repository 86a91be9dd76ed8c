package admin

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/repository"
	"github.com/Werneck0live/personal-controller/internal/utils"
)

//go:embed seeds/companies.json
var companiesJSON []byte

type seedItem struct {
	Nome         string             `json:"nome"`
	NomeFantasia string             `json:"nome_fantasia"`
	CNPJ         string             `json:"cnpj"`
	Tipo         models.CompanyType `json:"tipo"`
	Endereco     string             `json:"endereco"`
	Cidade       string             `json:"cidade"`
	Estado       string             `json:"estado"`
	CEP          string             `json:"cep"`
	Telefone     string             `json:"telefone"`
}

// SeedResult conta o que o seed fez.
type SeedResult struct {
	Created []*models.Company
	Existed int
	Invalid int
}

// SeedCompanies é idempotente: cria se não existir; se já existir (mesmo CNPJ), ignora.
func SeedCompanies(ctx context.Context, store repository.Store, log *slog.Logger) (*SeedResult, error) {
	if log == nil {
		log = slog.Default()
	}
	var items []seedItem
	if err := json.Unmarshal(companiesJSON, &items); err != nil {
		return nil, err
	}

	res := &SeedResult{}
	for _, s := range items {
		cnpj := utils.SanitizeCNPJ(s.CNPJ)
		if !utils.ValidateCNPJ(cnpj) {
			log.Warn("seed_skip_invalid_cnpj", "raw", s.CNPJ)
			res.Invalid++
			continue
		}

		c := models.NewCompany(s.Nome, s.Cidade, s.Estado, s.Tipo)
		c.NomeFantasia = s.NomeFantasia
		c.CNPJ = cnpj
		c.Endereco = s.Endereco
		c.CEP = s.CEP
		c.Telefone = s.Telefone
		c.Normalize()
		c.CreatedBy = "seed"

		// timeout curto por item pra não travar
		ictx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := store.Insert(ictx, c)
		cancel()

		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				log.Info("seed_company_exists", "cnpj", cnpj)
				res.Existed++
				continue
			}
			return res, err
		}
		res.Created = append(res.Created, c)
		log.Info("seed_company_created", "cnpj", cnpj)
	}

	log.Info("seed_companies_done", "count", len(items), "created", len(res.Created))
	return res, nil
}
