package dbConverter

import (
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/model/dbModel"
)

func ConvertUser(dbUser dbModel.User) model.User {
	return model.User{
		UserID:    dbUser.UserID,
		Username:  dbUser.Username,
		CreatedAt: dbUser.CreatedAt,
	}
}

func ConvertPortfolio(dbPortfolio dbModel.Portfolio) model.Portfolio {
	return model.Portfolio{
		PortfolioID: dbPortfolio.PortfolioID,
		UserID:      dbPortfolio.UserID,
		Name:        dbPortfolio.Name,
		Description: dbPortfolio.Description.String,
		CashBalance: dbPortfolio.CashBalance,
		IsDefault:   dbPortfolio.IsDefault,
		CreatedAt:   dbPortfolio.CreatedAt,
	}
}

func ConvertPosition(dbPosition dbModel.Position) model.Position {
	return model.Position{
		PositionID:  dbPosition.PositionID,
		PortfolioID: dbPosition.PortfolioID,
		Symbol:      dbPosition.Symbol,
		Shares:      dbPosition.Shares,
		AvgPrice:    dbPosition.AvgPrice,
		AddedAt:     dbPosition.AddedAt,
	}
}

func ConvertStock(dbStock dbModel.Stock) model.Stock {
	return model.Stock{
		Symbol:        dbStock.Symbol,
		Name:          dbStock.Name,
		Price:         dbStock.Price,
		Change:        dbStock.Change,
		ChangePercent: dbStock.ChangePercent,
		Volume:        dbStock.Volume,
		MarketCap:     dbStock.MarketCap,
		PE:            dbStock.PE,
		LastUpdated:   dbStock.LastUpdated,
	}
}

func ConvertMarketIndex(dbIndex dbModel.MarketIndex) model.MarketIndex {
	return model.MarketIndex{
		Symbol:        dbIndex.Symbol,
		Name:          dbIndex.Name,
		Price:         dbIndex.Price,
		Change:        dbIndex.Change,
		ChangePercent: dbIndex.ChangePercent,
		LastUpdated:   dbIndex.LastUpdated,
	}
}

func ConvertWatchlistItem(dbItem dbModel.WatchlistItem) model.WatchlistItem {
	return model.WatchlistItem{
		WatchlistID: dbItem.WatchlistID,
		UserID:      dbItem.UserID,
		PortfolioID: dbItem.PortfolioID,
		Symbol:      dbItem.Symbol,
		AddedAt:     dbItem.AddedAt,
	}
}

func ConvertRecommendation(dbRec dbModel.Recommendation) model.Recommendation {
	return model.Recommendation{
		RecommendationID: dbRec.RecommendationID,
		Symbol:           dbRec.Symbol,
		Action:           model.RecAction(dbRec.Action),
		Confidence:       model.RecConfidence(dbRec.Confidence),
		Reason:           dbRec.Reason,
		TargetPrice:      dbRec.TargetPrice,
		Allocation:       dbRec.Allocation,
		Type:             model.RecType(dbRec.RecType),
		IsActive:         dbRec.IsActive,
		CreatedAt:        dbRec.CreatedAt,
	}
}
